package speech

import (
	"encoding/binary"
	"errors"
)

// ErrNotWAV is returned for data without a RIFF/WAVE header.
var ErrNotWAV = errors.New("speech: not a WAV file")

// WAVSampleRate reads the sample rate from the fmt chunk of a RIFF/WAVE file.
func WAVSampleRate(data []byte) (int, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return 0, ErrNotWAV
	}

	off := 12
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		if id == "fmt " {
			if size < 16 || body+8 > len(data) {
				return 0, ErrNotWAV
			}
			// audio format (2) and channels (2) precede the rate.
			return int(binary.LittleEndian.Uint32(data[body+4 : body+8])), nil
		}
		off = body + size + size%2
	}
	return 0, ErrNotWAV
}

// DetectSampleRate fills SampleRate from the header when it is unset.
func DetectSampleRate(a Audio) Audio {
	if a.SampleRate > 0 {
		return a
	}
	if rate, err := WAVSampleRate(a.Data); err == nil {
		a.SampleRate = rate
	}
	return a
}
