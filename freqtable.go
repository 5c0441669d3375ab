package main

// FreqStep is one entry of the operator frequency curve: Coarse is the
// Multiple nibble of the DT1/Multiple register, Fine is the DT2 value as it
// appears in the high nibble of the DT2/D2R register.
type FreqStep struct {
	Coarse byte
	Fine   byte
	ratio  float64
}

// Ratio is the resulting frequency multiple.
func (s FreqStep) Ratio() float64 {
	return s.ratio
}

// freqTable orders every Multiple/DT2 combination by the frequency multiple
// it produces, so a 0-63 knob sweeps the operator pitch monotonically.
var freqTable = [64]FreqStep{
	{0x00, 0x00, 0.50},
	{0x00, 0x04, 0.71},
	{0x00, 0x08, 0.78},
	{0x00, 0x0C, 0.87},
	{0x01, 0x00, 1.00},
	{0x01, 0x04, 1.41},
	{0x01, 0x08, 1.57},
	{0x01, 0x0C, 1.73},
	{0x02, 0x00, 2.00},
	{0x02, 0x04, 2.82},
	{0x03, 0x00, 3.00},
	{0x02, 0x08, 3.14},
	{0x02, 0x0C, 3.46},
	{0x04, 0x00, 4.00},
	{0x03, 0x04, 4.24},
	{0x03, 0x08, 4.71},
	{0x05, 0x00, 5.00},
	{0x03, 0x0C, 5.19},
	{0x04, 0x04, 5.65},
	{0x06, 0x00, 6.00},
	{0x04, 0x08, 6.28},
	{0x04, 0x0C, 6.92},
	{0x07, 0x00, 7.00},
	{0x05, 0x04, 7.07},
	{0x05, 0x08, 7.85},
	{0x08, 0x00, 8.00},
	{0x06, 0x04, 8.48},
	{0x05, 0x0C, 8.65},
	{0x09, 0x00, 9.00},
	{0x06, 0x08, 9.42},
	{0x07, 0x04, 9.89},
	{0x0A, 0x00, 10.00},
	{0x06, 0x0C, 10.38},
	{0x07, 0x08, 10.99},
	{0x0B, 0x00, 11.00},
	{0x08, 0x04, 11.30},
	{0x0C, 0x00, 12.00},
	{0x07, 0x0C, 12.11},
	{0x08, 0x08, 12.56},
	{0x09, 0x04, 12.72},
	{0x0D, 0x00, 13.00},
	{0x08, 0x0C, 13.84},
	{0x0E, 0x00, 14.00},
	{0x0A, 0x04, 14.10},
	{0x09, 0x08, 14.13},
	{0x0F, 0x00, 15.00},
	{0x0B, 0x04, 15.55},
	{0x09, 0x0C, 15.57},
	{0x0A, 0x08, 15.70},
	{0x0C, 0x04, 16.96},
	{0x0B, 0x08, 17.27},
	{0x0A, 0x0C, 17.30},
	{0x0D, 0x04, 18.37},
	{0x0C, 0x08, 18.84},
	{0x0B, 0x0C, 19.03},
	{0x0E, 0x04, 19.78},
	{0x0D, 0x08, 20.41},
	{0x0C, 0x0C, 20.76},
	{0x0F, 0x04, 21.20},
	{0x0E, 0x08, 21.98},
	{0x0D, 0x0C, 22.49},
	{0x0F, 0x08, 23.55},
	{0x0E, 0x0C, 24.22},
	{0x0F, 0x0C, 25.95},
}

// LookupFreq returns the table entry for a 0-63 controller value.
func LookupFreq(v uint8) (FreqStep, bool) {
	if int(v) >= len(freqTable) {
		return FreqStep{}, false
	}
	return freqTable[v], true
}
