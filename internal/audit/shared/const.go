package shared

const (
	// MaxValue16 is the 16-bit signed PCM full-scale divisor (2^15).
	MaxValue16 = 32768.0

	// FloorDb is reported for digital silence wherever a dB value must exist.
	FloorDb = -120.0

	// MinRMS is the linear RMS below which a signal is treated as silent.
	MinRMS = 1e-8
)
