//nolint:staticcheck // too dumb on Db vs. DB
package types

// MetricsResult aggregates every metric computed for one buffer.
// A nil sub-result means the metric could not be computed (insufficient data), never zero.
type MetricsResult struct {
	Loudness *LoudnessResult
	TruePeak *TruePeakResult
	Stereo   *StereoResult
	Dynamics *DynamicsResult
	DCOffset *DCOffsetResult
	Spectral *SpectralResult
	BPM      *BPMResult

	SampleRate int
	Channels   int
	Duration   float64 // seconds
}

/*
Loudness Interpretation

| Integrated (LUFS) | Typical context                   |
|-------------------|-----------------------------------|
| > -8              | Club/funk masters, very loud      |
| -8 to -11         | Modern pop, EDM                   |
| -11 to -14        | Streaming normalization territory |
| -14 to -18        | Dynamic masters, acoustic         |
| < -18             | Broadcast, classical, unmastered  |

LRA (LU): < 4 heavily compressed, 4-8 typical pop/EDM, 8-15 dynamic, > 15 classical/film.
*/

// LoudnessResult contains BS.1770 gated loudness measurements.
// ShortTerm and Momentary are the maxima of the 3 s and 400 ms windows.
type LoudnessResult struct {
	Integrated *float64 // LUFS
	ShortTerm  *float64 // LUFS
	Momentary  *float64 // LUFS
	LRA        *float64 // LU
	Frames     uint64
}

// TruePeakResult contains oversampled peak measurements.
type TruePeakResult struct {
	MaxDbtp            float64
	MaxLinear          float64
	OversamplingFactor int
	ClippingCount      uint64 // oversampled points at or above 0 dBTP
	ClippedSamples     uint64 // sample-domain samples at full scale
	SamplePeakDb       float64
	LeftPeak           *float64 // dBTP
	RightPeak          *float64 // dBTP
	ChannelPeaksDbtp   []float64
	Frames             uint64
}

/*
Stereo Interpretation

| Correlation   | Interpretation                               |
|---------------|----------------------------------------------|
| > 0.95        | Mono or near mono                            |
| 0.7 to 0.95   | Narrow, safe                                 |
| 0.3 to 0.7    | Wide, typical of produced music              |
| 0 to 0.3      | Very wide, check mono fold-down              |
| < -0.3        | Phase problems, content cancels in mono      |

Width is 2*Side/(Mid+Side): 0 is mono, 1 is side-only.
Balance is (R-L)/(R+L) on channel RMS: negative leans left.
*/

// StereoResult contains inter-channel measurements.
type StereoResult struct {
	Correlation      float64
	Width            float64
	Balance          float64
	BalanceDb        float64 // L/R RMS ratio, positive = left louder
	CancellationDb   float64 // stereo RMS vs mono-sum RMS
	IsMonoCompatible bool
	HasPhaseIssues   bool
	Frames           uint64
}

// DynamicsResult contains dynamic range measurements.
type DynamicsResult struct {
	DynamicRange float64 // dB, loudest window RMS minus mean window RMS
	CrestFactor  float64 // dB, sample peak minus RMS
	DRScore      int     // DR meter style score, 1..20
	PeakRmsDb    float64
	AverageRmsDb float64
	Windows      int
}

// DCOffsetResult contains per-channel DC measurements.
type DCOffsetResult struct {
	Channels []float64 // mean value per channel
	MaxAbs   float64
	MaxDb    float64
}

// BandEnergy is the energy of one spectral band relative to the whole spectrum.
type BandEnergy struct {
	// RmsDb is the mean power per FFT bin of the band over the total frame power, in dB, averaged over
	// frames. It is a per-bin level, not the summed band energy, so bands of different widths compare.
	RmsDb float64
	// PeakDb is the loudest per-frame RmsDb.
	PeakDb float64
	// EnergyPct is the band's share of the summed spectral power, in percent.
	EnergyPct float64
}

// SpectralResult contains frame-averaged spectral descriptors.
type SpectralResult struct {
	CentroidHz  float64
	RolloffHz   float64
	BandwidthHz float64
	Flatness    float64
	Bands       map[string]BandEnergy
	Frames      int
	FFTSize     int
}

// BPMResult contains the tempo estimate. Value and Confidence are both nil when no reliable tempo exists.
type BPMResult struct {
	Value      *float64
	Confidence *float64
	Method     string
	Onsets     int
}
