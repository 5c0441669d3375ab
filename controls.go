package main

import "fmt"

// Shape selects how a controller value is turned into register bits.
type Shape int

const (
	// ShapeToggle sets the field's bit on 127 and clears it on 0; any other
	// value leaves it alone.
	ShapeToggle Shape = iota
	// ShapeDirect copies the value when it lies in [Min, Max].
	ShapeDirect
	// ShapeInverted stores Max-value, for levels the device counts as
	// attenuation.
	ShapeInverted
	// ShapeSignedOffset maps 0..63 to +0..+63 and 64..127 to -64..-1,
	// stored with an offset of 64.
	ShapeSignedOffset
	// ShapeTwosComplement stores value-Center as an 8-bit two's complement
	// number.
	ShapeTwosComplement
	// ShapeRelative treats 64 as "no change" and adds the deviation from 64
	// to the stored value.
	ShapeRelative
	// ShapeLookup stores Table[value].
	ShapeLookup
	// ShapeFreqDual indexes the frequency table and writes two registers.
	ShapeFreqDual
)

var shapeNames = map[Shape]string{
	ShapeToggle:         "toggle",
	ShapeDirect:         "direct",
	ShapeInverted:       "inverted",
	ShapeSignedOffset:   "signed",
	ShapeTwosComplement: "twos-complement",
	ShapeRelative:       "relative",
	ShapeLookup:         "lookup",
	ShapeFreqDual:       "freq-dual",
}

func (s Shape) String() string {
	if n, ok := shapeNames[s]; ok {
		return n
	}
	return fmt.Sprintf("shape(%d)", int(s))
}

// Scope decides the address byte and how the data is sent.
type Scope int

const (
	ScopeSystem     Scope = iota // address 0x10, one data byte
	ScopeInstrument              // address 0x18+n, one data byte
	ScopeVoice                   // address 0x18+n, low/high nibble pair
)

func (s Scope) String() string {
	switch s {
	case ScopeSystem:
		return "system"
	case ScopeInstrument:
		return "instrument"
	case ScopeVoice:
		return "voice"
	}
	return fmt.Sprintf("scope(%d)", int(s))
}

// Control maps one controller number onto a register field.
type Control struct {
	CC    uint8
	Name  string
	Field Field
	Shape Shape

	// Min and Max bound the accepted controller value. For ShapeRelative
	// they bound the currently stored value instead.
	Min, Max int

	Center    int    // ShapeTwosComplement
	Table     []byte // ShapeLookup
	Secondary *Field // ShapeFreqDual
}

// Scope returns where messages for this control are addressed.
func (c *Control) Scope() Scope {
	switch c.Field.Group {
	case GroupSystem, GroupConfig:
		return ScopeSystem
	case GroupInstrument:
		return ScopeInstrument
	}
	return ScopeVoice
}

// Fields lists every register field the control writes, primary first.
func (c *Control) Fields() []Field {
	if c.Secondary != nil {
		return []Field{c.Field, *c.Secondary}
	}
	return []Field{c.Field}
}

// transform applies a controller value to the store. It reports whether
// the store was changed; a rejected value leaves every field as it was.
type transform func(c *Control, s *ParameterStore, v uint8) bool

var transforms = map[Shape]transform{
	ShapeToggle:         applyToggle,
	ShapeDirect:         applyDirect,
	ShapeInverted:       applyInverted,
	ShapeSignedOffset:   applySignedOffset,
	ShapeTwosComplement: applyTwosComplement,
	ShapeRelative:       applyRelative,
	ShapeLookup:         applyLookup,
	ShapeFreqDual:       applyFreqDual,
}

func (c *Control) apply(s *ParameterStore, v uint8) bool {
	return transforms[c.Shape](c, s, v)
}

func (c *Control) inRange(v int) bool {
	return v >= c.Min && v <= c.Max
}

func setValue(s *ParameterStore, f Field, v byte) bool {
	before := s.Get(f)
	s.Set(f, f.Pack(v))
	return s.Get(f) != before
}

func applyToggle(c *Control, s *ParameterStore, v uint8) bool {
	switch v {
	case 0:
		return setValue(s, c.Field, 0)
	case 127:
		return setValue(s, c.Field, byte(c.Field.Max()))
	}
	return false
}

func applyDirect(c *Control, s *ParameterStore, v uint8) bool {
	if !c.inRange(int(v)) {
		return false
	}
	return setValue(s, c.Field, v)
}

func applyInverted(c *Control, s *ParameterStore, v uint8) bool {
	if !c.inRange(int(v)) {
		return false
	}
	return setValue(s, c.Field, byte(c.Max-int(v)))
}

func applySignedOffset(c *Control, s *ParameterStore, v uint8) bool {
	if v > 127 {
		return false
	}
	if v <= 63 {
		return setValue(s, c.Field, v+64)
	}
	return setValue(s, c.Field, v-64)
}

func applyTwosComplement(c *Control, s *ParameterStore, v uint8) bool {
	if !c.inRange(int(v)) {
		return false
	}
	return setValue(s, c.Field, byte(int(v)-c.Center))
}

// applyRelative checks the stored value against [Min, Max] before adding
// the delta, not the result. The result only has to fit the field.
func applyRelative(c *Control, s *ParameterStore, v uint8) bool {
	if v == 64 {
		return false
	}
	cur := int(c.Field.Value(s.Get(c.Field)))
	if !c.inRange(cur) {
		return false
	}
	next := cur + int(v) - 64
	if next < 0 || next > c.Field.Max() {
		return false
	}
	return setValue(s, c.Field, byte(next))
}

func applyLookup(c *Control, s *ParameterStore, v uint8) bool {
	if !c.inRange(int(v)) || int(v) >= len(c.Table) {
		return false
	}
	return setValue(s, c.Field, c.Table[v])
}

func applyFreqDual(c *Control, s *ParameterStore, v uint8) bool {
	step, ok := LookupFreq(v)
	if !ok || !c.inRange(int(v)) {
		return false
	}
	primary := setValue(s, c.Field, step.Coarse)
	secondary := setValue(s, *c.Secondary, c.Secondary.Value(step.Fine<<4))
	return primary || secondary
}

// nativeControllers are understood by the FB-01 as plain CCs and are
// forwarded untouched.
var nativeControllers = map[uint8]string{
	1:   "Mod Wheel",
	2:   "Breath",
	4:   "Foot Controller",
	5:   "Portamento Time",
	7:   "Channel Volume",
	10:  "Pan",
	64:  "Damper Pedal",
	65:  "Portamento On/Off",
	66:  "Sostenuto",
	123: "All Notes Off",
	126: "Mono Mode",
	127: "Poly Mode",
}

// IsNative reports whether the device handles cc itself.
func IsNative(cc uint8) bool {
	_, ok := nativeControllers[cc]
	return ok
}

// operatorCCBase is the first controller of each operator block, operator
// 1 first. The blocks skip 64-66 so the pedals stay native.
var operatorCCBase = [4]uint8{32, 48, 67, 83}

// dt1Table maps controller 0..6 onto DT1 -3..+3 (sign-magnitude, 4 = 0).
var dt1Table = []byte{7, 6, 5, 0, 1, 2, 3}

// operatorTemplate is the per-operator layout, indexed by controller
// offset from the block's base.
var operatorTemplate = [16]struct {
	name     string
	reg      byte
	mask     byte
	shape    Shape
	min, max int
}{
	{"TL (Total Level)", opTL, 0x7F, ShapeInverted, 0, 127},
	{"Level Scaling Type -/+", opTypeVelTL, 0x80, ShapeToggle, 0, 127},
	{"Level Scaling Type Lin/Exp", opTypeDTMult, 0x80, ShapeToggle, 0, 127},
	{"Velocity/TL Sensitivity", opTypeVelTL, 0x70, ShapeDirect, 0, 7},
	{"Level Scaling Depth", opDepthFine, 0xF0, ShapeDirect, 0, 15},
	{"TL Fine Adjust", opDepthFine, 0x0F, ShapeDirect, 0, 15},
	{"Detune 1 (Coarse)", opTypeDTMult, 0x70, ShapeLookup, 0, 6},
	{"Freq Multiple/Detune 2 (Fine)", opTypeDTMult, 0x0F, ShapeFreqDual, 0, 63},
	{"Rate Scaling Depth", opRateAR, 0xC0, ShapeDirect, 0, 3},
	{"AR (Attack Rate)", opRateAR, 0x1F, ShapeDirect, 0, 31},
	{"AM Enable", opAMVelD1R, 0x80, ShapeToggle, 0, 127},
	{"Velocity/AR Sensitivity", opAMVelD1R, 0x60, ShapeDirect, 0, 3},
	{"D1R (Decay 1 Rate)", opAMVelD1R, 0x1F, ShapeDirect, 0, 31},
	{"D2R (Decay 2 Rate)", opDT2D2R, 0x1F, ShapeDirect, 0, 31},
	{"SL (Sustain Level)", opSLRR, 0xF0, ShapeDirect, 0, 15},
	{"RR (Release Rate)", opSLRR, 0x0F, ShapeDirect, 0, 15},
}

func sysField(param, mask byte) Field { return Field{GroupSystem, param, mask} }

func cfgField(param, mask byte) Field { return Field{GroupConfig, param, mask} }

func instField(param, mask byte) Field { return Field{GroupInstrument, param, mask} }

func voiceField(param, mask byte) Field { return Field{GroupVoice, param, mask} }

// controlMap is indexed by controller number; nil entries are not
// translated.
var controlMap = buildControlMap()

func buildControlMap() [128]*Control {
	var m [128]*Control
	add := func(c Control) {
		if m[c.CC] != nil {
			panic(fmt.Sprintf("controller %d mapped twice", c.CC))
		}
		m[c.CC] = &c
	}

	// System and configuration.
	add(Control{CC: 0, Name: "System: Memory Protect", Field: sysField(sysMemProtectParam, 0x01), Shape: ShapeToggle, Min: 0, Max: 127})
	add(Control{CC: 3, Name: "Config: Combine Mode", Field: cfgField(cfgCombineParam, 0x01), Shape: ShapeToggle, Min: 0, Max: 127})
	for i, cc := range []uint8{6, 8, 9, 11, 12, 13, 14, 15} {
		add(Control{
			CC:    cc,
			Name:  fmt.Sprintf("Config: Name (Char #%d)", i+1),
			Field: cfgField(cfgNameParam+byte(i), 0xFF),
			Shape: ShapeRelative,
			Min:   0,
			Max:   127,
		})
	}
	add(Control{CC: 111, Name: "System: Config Number", Field: sysField(sysConfigNumberParam, 0xFF), Shape: ShapeDirect, Min: 0, Max: 19})
	add(Control{CC: 112, Name: "System: Channel Number", Field: sysField(sysChannelParam, 0xFF), Shape: ShapeDirect, Min: 0, Max: 15})
	add(Control{CC: 113, Name: "System: Master Detune", Field: sysField(sysDetuneParam, 0xFF), Shape: ShapeSignedOffset, Min: 0, Max: 127})
	add(Control{CC: 125, Name: "System: Master Output Level", Field: sysField(sysOutputLevelParam, 0xFF), Shape: ShapeDirect, Min: 0, Max: 127})

	// Voice.
	add(Control{CC: 16, Name: "Voice: Load LFO", Field: voiceField(voiceLFOLoadAMD, 0x80), Shape: ShapeToggle, Min: 0, Max: 127})
	add(Control{CC: 17, Name: "Voice: AMD", Field: voiceField(voiceLFOLoadAMD, 0x7F), Shape: ShapeDirect, Min: 0, Max: 127})
	add(Control{CC: 18, Name: "Voice: LFO Sync to Note On", Field: voiceField(voiceLFOSyncPMD, 0x80), Shape: ShapeToggle, Min: 0, Max: 127})
	add(Control{CC: 19, Name: "Voice: PMD", Field: voiceField(voiceLFOSyncPMD, 0x7F), Shape: ShapeDirect, Min: 0, Max: 127})
	for i, mask := range []byte{0x40, 0x20, 0x10, 0x08} {
		add(Control{
			CC:    20 + uint8(i),
			Name:  fmt.Sprintf("Voice: Toggle Operator %d", i+1),
			Field: voiceField(voiceOpEnableParam, mask),
			Shape: ShapeToggle,
			Min:   0,
			Max:   127,
		})
	}
	add(Control{CC: 24, Name: "Voice: Algorithm", Field: voiceField(voiceFeedbackAlgo, 0x07), Shape: ShapeDirect, Min: 0, Max: 7})
	add(Control{CC: 25, Name: "Voice: Feedback Level", Field: voiceField(voiceFeedbackAlgo, 0x38), Shape: ShapeDirect, Min: 0, Max: 7})
	add(Control{CC: 26, Name: "Voice: PMS", Field: voiceField(voicePMSAMSParam, 0x70), Shape: ShapeDirect, Min: 0, Max: 7})
	add(Control{CC: 27, Name: "Voice: AMS", Field: voiceField(voicePMSAMSParam, 0x03), Shape: ShapeDirect, Min: 0, Max: 3})
	add(Control{CC: 28, Name: "Voice: LFO Waveform", Field: voiceField(voiceWaveformParam, 0x60), Shape: ShapeDirect, Min: 0, Max: 3})
	add(Control{CC: 29, Name: "Voice: PMD Assign", Field: voiceField(voicePMDBendParam, 0x70), Shape: ShapeDirect, Min: 0, Max: 4})
	add(Control{CC: 30, Name: "Voice: Transpose", Field: voiceField(voiceTransposeParam, 0xFF), Shape: ShapeTwosComplement, Min: 0, Max: 49, Center: 25})
	add(Control{CC: 31, Name: "Voice: Pitch Bend Range", Field: voiceField(voicePMDBendParam, 0x0F), Shape: ShapeDirect, Min: 0, Max: 12})
	add(Control{CC: 115, Name: "Voice: LFO Speed", Field: voiceField(voiceLFOSpeedParam, 0xFF), Shape: ShapeRelative, Min: 0, Max: 255})
	for i := 0; i < 7; i++ {
		add(Control{
			CC:    116 + uint8(i),
			Name:  fmt.Sprintf("Voice: Name (Char #%d)", i+1),
			Field: voiceField(voiceNameParam+byte(i), 0xFF),
			Shape: ShapeRelative,
			Min:   0,
			Max:   127,
		})
	}
	add(Control{CC: 124, Name: "Voice: User Code", Field: voiceField(voiceUserCodeParam, 0xFF), Shape: ShapeRelative, Min: 0, Max: 127})

	// Operators.
	for op, ccBase := range operatorCCBase {
		base := operatorBase[op]
		for k, t := range operatorTemplate {
			c := Control{
				CC:    ccBase + uint8(k),
				Name:  fmt.Sprintf("Op%d: %s", op+1, t.name),
				Field: voiceField(base+t.reg, t.mask),
				Shape: t.shape,
				Min:   t.min,
				Max:   t.max,
			}
			switch t.shape {
			case ShapeLookup:
				c.Table = dt1Table
			case ShapeFreqDual:
				dt2 := voiceField(base+opDT2D2R, 0xE0)
				c.Secondary = &dt2
			}
			add(c)
		}
	}

	// Instrument.
	add(Control{CC: 99, Name: "Inst: # of Notes", Field: instField(instNotesParam, 0xFF), Shape: ShapeDirect, Min: 0, Max: 8})
	add(Control{CC: 100, Name: "Inst: MIDI Channel", Field: instField(instChannelParam, 0xFF), Shape: ShapeDirect, Min: 0, Max: 15})
	add(Control{CC: 101, Name: "Inst: KC Limit/L", Field: instField(instKCLimitLParam, 0xFF), Shape: ShapeDirect, Min: 0, Max: 127})
	add(Control{CC: 102, Name: "Inst: KC Limit/H", Field: instField(instKCLimitHParam, 0xFF), Shape: ShapeDirect, Min: 0, Max: 127})
	add(Control{CC: 103, Name: "Inst: Voice Bank", Field: instField(instBankParam, 0xFF), Shape: ShapeDirect, Min: 0, Max: 6})
	add(Control{CC: 104, Name: "Inst: Voice #", Field: instField(instVoiceParam, 0xFF), Shape: ShapeDirect, Min: 0, Max: 47})
	add(Control{CC: 105, Name: "Inst: Detune", Field: instField(instDetuneParam, 0xFF), Shape: ShapeSignedOffset, Min: 0, Max: 127})
	add(Control{CC: 106, Name: "Inst: Octave Transpose", Field: instField(instOctaveParam, 0xFF), Shape: ShapeDirect, Min: 0, Max: 4})
	add(Control{CC: 107, Name: "Inst: Output Level", Field: instField(instOutputParam, 0xFF), Shape: ShapeDirect, Min: 0, Max: 127})
	add(Control{CC: 108, Name: "Inst: Pan", Field: instField(instPanParam, 0xFF), Shape: ShapeDirect, Min: 0, Max: 127})
	add(Control{CC: 109, Name: "Inst: LFO Enable", Field: instField(instLFOEnableParam, 0x01), Shape: ShapeToggle, Min: 0, Max: 127})
	add(Control{CC: 110, Name: "Inst: Pitch Bend Range", Field: instField(instBendRangeParam, 0xFF), Shape: ShapeDirect, Min: 0, Max: 12})

	return m
}

// LookupControl returns the mapping for cc, if any.
func LookupControl(cc uint8) (*Control, bool) {
	if int(cc) >= len(controlMap) || controlMap[cc] == nil {
		return nil, false
	}
	return controlMap[cc], true
}

// Controls returns every mapped controller in CC order.
func Controls() []*Control {
	out := make([]*Control, 0, len(controlMap))
	for _, c := range controlMap {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}
