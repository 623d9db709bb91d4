package metadata

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// Layer III lookup tables, indexed by the header bitrate/samplerate bits.
var (
	mpeg1L3Bitrates = [16]int{
		0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0,
	}
	mpeg2L3Bitrates = [16]int{
		0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, 0,
	}
	mpeg1SampleRates  = [4]int{44100, 48000, 32000, 0}
	mpeg2SampleRates  = [4]int{22050, 24000, 16000, 0}
	mpeg25SampleRates = [4]int{11025, 12000, 8000, 0}
)

// mp3FileDuration walks the Layer III frame headers of an MP3 file and sums
// the decoded time of every frame. Used only when the tag carries no TLEN
// frame. Bytes that do not parse as a frame header are skipped one at a time,
// so junk between frames costs accuracy, not failure.
func mp3FileDuration(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("mp3 duration %s: %w", path, err)
	}
	defer f.Close()

	// Skip a leading ID3v2 tag so its bytes are never misread as frame sync.
	head := make([]byte, 10)
	if _, err := io.ReadFull(f, head); err != nil {
		return 0, fmt.Errorf("mp3 duration %s: %w", path, err)
	}
	offset := int64(0)
	if head[0] == 'I' && head[1] == 'D' && head[2] == '3' {
		size := int64(head[6]&0x7f)<<21 | int64(head[7]&0x7f)<<14 |
			int64(head[8]&0x7f)<<7 | int64(head[9]&0x7f)
		offset = 10 + size
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return 0, fmt.Errorf("mp3 duration %s: %w", path, err)
	}

	br := bufio.NewReaderSize(f, 64<<10)
	var seconds float64
	for {
		b, err := br.ReadByte()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("mp3 duration %s: %w", path, err)
		}
		if b != 0xff {
			continue
		}
		rest, err := br.Peek(3)
		if err != nil {
			break
		}
		frameLen, frameSecs, ok := parseFrameHeader(rest)
		if !ok {
			continue
		}
		seconds += frameSecs
		// The sync byte is consumed; the rest of the frame is not.
		if _, err := br.Discard(frameLen - 1); err != nil {
			break
		}
	}
	return int(seconds), nil
}

// parseFrameHeader decodes the 3 bytes following a 0xff sync byte. Returns
// the total frame length in bytes, the frame's decoded duration and whether
// the bytes formed a valid Layer III header.
func parseFrameHeader(h []byte) (frameLen int, secs float64, ok bool) {
	if h[0]&0xe0 != 0xe0 {
		return 0, 0, false
	}
	version := (h[0] >> 3) & 0x3 // 0: 2.5, 2: 2, 3: 1
	layer := (h[0] >> 1) & 0x3   // 1: Layer III
	if version == 1 || layer != 1 {
		return 0, 0, false
	}

	bitrateIdx := h[1] >> 4
	sampleRateIdx := (h[1] >> 2) & 0x3
	padding := int((h[1] >> 1) & 0x1)

	var bitrate, sampleRate, samplesPerFrame int
	switch version {
	case 3:
		bitrate = mpeg1L3Bitrates[bitrateIdx]
		sampleRate = mpeg1SampleRates[sampleRateIdx]
		samplesPerFrame = 1152
	case 2:
		bitrate = mpeg2L3Bitrates[bitrateIdx]
		sampleRate = mpeg2SampleRates[sampleRateIdx]
		samplesPerFrame = 576
	default:
		bitrate = mpeg2L3Bitrates[bitrateIdx]
		sampleRate = mpeg25SampleRates[sampleRateIdx]
		samplesPerFrame = 576
	}
	if bitrate == 0 || sampleRate == 0 {
		return 0, 0, false
	}

	frameLen = samplesPerFrame/8*bitrate*1000/sampleRate + padding
	if frameLen < 4 {
		return 0, 0, false
	}
	return frameLen, float64(samplesPerFrame) / float64(sampleRate), true
}
