package main

import (
	"fmt"
	"math/bits"
)

// Group is one addressable unit of FB-01 state.
type Group int

const (
	GroupSystem Group = iota
	GroupConfig
	GroupInstrument
	GroupVoice

	numGroups
)

func (g Group) String() string {
	switch g {
	case GroupSystem:
		return "system"
	case GroupConfig:
		return "config"
	case GroupInstrument:
		return "instrument"
	case GroupVoice:
		return "voice"
	}
	return fmt.Sprintf("group(%d)", int(g))
}

// System parameter bytes (address 0x10).
const (
	sysChannelParam      = 0x20
	sysMemProtectParam   = 0x21
	sysConfigNumberParam = 0x22
	sysDetuneParam       = 0x23
	sysOutputLevelParam  = 0x24
)

// Configuration parameter bytes (address 0x10).
const (
	cfgNameParam    = 0x00 // 8 chars
	cfgCombineParam = 0x08
)

// Instrument parameter bytes (address 0x18+n).
const (
	instNotesParam     = 0x00
	instChannelParam   = 0x01
	instKCLimitHParam  = 0x02
	instKCLimitLParam  = 0x03
	instBankParam      = 0x04
	instVoiceParam     = 0x05
	instDetuneParam    = 0x06
	instOctaveParam    = 0x07
	instOutputParam    = 0x08
	instPanParam       = 0x09
	instLFOEnableParam = 0x0A
	instPortTimeParam  = 0x0B
	instBendRangeParam = 0x0C
	instPolyParam      = 0x0D
	instPMDAssignParam = 0x0E
)

// Voice parameter bytes (address 0x18+n, sent as nibble pairs).
const (
	voiceNameParam      = 0x40 // 7 chars
	voiceUserCodeParam  = 0x47
	voiceLFOSpeedParam  = 0x48
	voiceLFOLoadAMD     = 0x49
	voiceLFOSyncPMD     = 0x4A
	voiceOpEnableParam  = 0x4B
	voiceFeedbackAlgo   = 0x4C
	voicePMSAMSParam    = 0x4D
	voiceWaveformParam  = 0x4E
	voiceTransposeParam = 0x4F
	voicePMDBendParam   = 0x7B
)

// Operator register offsets from an operator base. Every operator has the
// same eight-register layout.
const (
	opTL         = 0 // total level
	opTypeVelTL  = 1 // level scaling type bit 0, velocity -> TL
	opDepthFine  = 2 // level scaling depth, TL fine adjust
	opTypeDTMult = 3 // level scaling type bit 1, DT1, multiple
	opRateAR     = 4 // rate scaling depth, AR
	opAMVelD1R   = 5 // AM enable, velocity -> AR, D1R
	opDT2D2R     = 6 // DT2, D2R
	opSLRR       = 7 // SL, RR

	opRegisters = 8
)

// operatorBase holds the voice parameter byte of each operator block,
// operator 1 first. The device stores them in reverse order.
var operatorBase = [4]byte{0x68, 0x60, 0x58, 0x50}

// Field is the set of bits a parameter owns inside one packed register.
type Field struct {
	Group Group
	Param byte
	Mask  byte
}

func (f Field) shift() int {
	return bits.TrailingZeros8(f.Mask)
}

// Max is the largest right-aligned value the field can hold.
func (f Field) Max() int {
	return int(f.Mask >> f.shift())
}

// Pack positions a right-aligned value inside the field's bits.
func (f Field) Pack(v byte) byte {
	return (v << f.shift()) & f.Mask
}

// Value extracts the right-aligned value from a packed register byte.
func (f Field) Value(packed byte) byte {
	return (packed & f.Mask) >> f.shift()
}

// ParameterStore keeps the last transmitted packed byte of every register.
// It does no validation and no locking; the Encoder owns both.
type ParameterStore struct {
	regs [numGroups][128]byte
}

// NewParameterStore returns a store seeded with a blank "INIT" setup.
func NewParameterStore() *ParameterStore {
	s := &ParameterStore{}

	sys := &s.regs[GroupSystem]
	sys[sysChannelParam] = 0
	sys[sysMemProtectParam] = 0
	sys[sysConfigNumberParam] = 0
	sys[sysDetuneParam] = 64 // offset-64 zero
	sys[sysOutputLevelParam] = 127

	cfg := &s.regs[GroupConfig]
	copy(cfg[cfgNameParam:cfgNameParam+8], "InitConf")
	cfg[cfgCombineParam] = 0

	inst := &s.regs[GroupInstrument]
	inst[instNotesParam] = 8
	inst[instChannelParam] = 0
	inst[instKCLimitHParam] = 127
	inst[instKCLimitLParam] = 0
	inst[instBankParam] = 0
	inst[instVoiceParam] = 0
	inst[instDetuneParam] = 64
	inst[instOctaveParam] = 2
	inst[instOutputParam] = 127
	inst[instPanParam] = 64
	inst[instLFOEnableParam] = 1
	inst[instPortTimeParam] = 0
	inst[instBendRangeParam] = 2
	inst[instPolyParam] = 1
	inst[instPMDAssignParam] = 0

	voice := &s.regs[GroupVoice]
	copy(voice[voiceNameParam:voiceNameParam+7], "init   ")
	voice[voiceUserCodeParam] = 0
	voice[voiceLFOSpeedParam] = 200
	voice[voiceOpEnableParam] = 0x40 // operator 1 only
	voice[voicePMSAMSParam] = 0x30
	for i, base := range operatorBase {
		voice[base+opTL] = 127
		if i == 0 {
			voice[base+opTL] = 0
		}
		voice[base+opTypeDTMult] = 0x01 // multiple 1
		voice[base+opRateAR] = 0x1F     // AR 31
		voice[base+opSLRR] = 0x0F       // RR 15
	}

	return s
}

// Register returns the whole packed byte at param.
func (s *ParameterStore) Register(g Group, param byte) byte {
	return s.regs[g][param&0x7F]
}

// Get returns the field's bits in place; bits it does not own read as 0.
func (s *ParameterStore) Get(f Field) byte {
	return s.regs[f.Group][f.Param&0x7F] & f.Mask
}

// Set merges packed into the field's bits, leaving sibling bits untouched.
func (s *ParameterStore) Set(f Field, packed byte) {
	r := &s.regs[f.Group][f.Param&0x7F]
	*r = *r&^f.Mask | packed&f.Mask
}

// StoreSnapshot is a read-only view of the store for inspection.
type StoreSnapshot struct {
	System     SystemSnapshot     `json:"system"`
	Config     ConfigSnapshot     `json:"config"`
	Instrument InstrumentSnapshot `json:"instrument"`
	Voice      VoiceSnapshot      `json:"voice"`
}

type SystemSnapshot struct {
	Channel      byte `json:"channel"`
	MemProtect   byte `json:"memory_protect"`
	ConfigNumber byte `json:"config_number"`
	Detune       byte `json:"detune"`
	OutputLevel  byte `json:"output_level"`
}

type ConfigSnapshot struct {
	Name    string `json:"name"`
	Combine byte   `json:"combine"`
}

type InstrumentSnapshot struct {
	Notes     byte `json:"notes"`
	Channel   byte `json:"channel"`
	KCLimitL  byte `json:"kc_limit_low"`
	KCLimitH  byte `json:"kc_limit_high"`
	Bank      byte `json:"bank"`
	Voice     byte `json:"voice"`
	Detune    byte `json:"detune"`
	Octave    byte `json:"octave"`
	Output    byte `json:"output_level"`
	Pan       byte `json:"pan"`
	LFOEnable byte `json:"lfo_enable"`
	BendRange byte `json:"bend_range"`
}

type VoiceSnapshot struct {
	Name      string              `json:"name"`
	Registers map[string]byte     `json:"registers"`
	Operators [4]OperatorSnapshot `json:"operators"`
}

type OperatorSnapshot struct {
	Base      byte    `json:"base"`
	Registers [8]byte `json:"registers"`
}

// Snapshot copies the current register contents.
func (s *ParameterStore) Snapshot() StoreSnapshot {
	sys := &s.regs[GroupSystem]
	cfg := &s.regs[GroupConfig]
	inst := &s.regs[GroupInstrument]
	voice := &s.regs[GroupVoice]

	snap := StoreSnapshot{
		System: SystemSnapshot{
			Channel:      sys[sysChannelParam],
			MemProtect:   sys[sysMemProtectParam],
			ConfigNumber: sys[sysConfigNumberParam],
			Detune:       sys[sysDetuneParam],
			OutputLevel:  sys[sysOutputLevelParam],
		},
		Config: ConfigSnapshot{
			Name:    string(cfg[cfgNameParam : cfgNameParam+8]),
			Combine: cfg[cfgCombineParam],
		},
		Instrument: InstrumentSnapshot{
			Notes:     inst[instNotesParam],
			Channel:   inst[instChannelParam],
			KCLimitL:  inst[instKCLimitLParam],
			KCLimitH:  inst[instKCLimitHParam],
			Bank:      inst[instBankParam],
			Voice:     inst[instVoiceParam],
			Detune:    inst[instDetuneParam],
			Octave:    inst[instOctaveParam],
			Output:    inst[instOutputParam],
			Pan:       inst[instPanParam],
			LFOEnable: inst[instLFOEnableParam],
			BendRange: inst[instBendRangeParam],
		},
		Voice: VoiceSnapshot{
			Name:      string(voice[voiceNameParam : voiceNameParam+7]),
			Registers: make(map[string]byte),
		},
	}

	for p := byte(voiceUserCodeParam); p <= voiceTransposeParam; p++ {
		snap.Voice.Registers[fmt.Sprintf("0x%02X", p)] = voice[p]
	}
	snap.Voice.Registers[fmt.Sprintf("0x%02X", voicePMDBendParam)] = voice[voicePMDBendParam]

	for i, base := range operatorBase {
		snap.Voice.Operators[i].Base = base
		copy(snap.Voice.Operators[i].Registers[:], voice[base:base+opRegisters])
	}

	return snap
}
