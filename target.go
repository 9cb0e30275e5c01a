// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package vtparse

// StringHandler receives one decoded character at a time for the handful
// of operations that return a multi-character payload (DCS-backed macros,
// settings requests, sound playback). Returning false aborts the
// transfer early and drops the state machine into DcsIgnore (spec.md §3,
// §4.3 "DcsPassThrough").
type StringHandler func(r rune) bool

// SGRParam is one CSI `m` parameter together with whatever sub-parameters
// followed it, so a Dispatch Target can distinguish `38;2;r;g;b` (legacy,
// sub-parameters absent) from `38:2:r:g:b` (colon form) without
// re-parsing the original bytes (SPEC_FULL.md §6, generalizing
// _examples/ericwq-aprilsh/terminal/handler.go's sgr handling).
type SGRParam struct {
	Value int
	Subs  []int
}

// ModeParam names a terminal mode together with whether its number was
// introduced by `?` (DEC private) or bare (ANSI standard), per the
// DECPrivateMode/ANSIStandardMode glossary entries in spec.md §10.
type ModeParam struct {
	Number  int
	Private bool
}

// ModeReportValue is the DECRQM reply: the mode's current state, encoded
// the way the wire protocol does (0=not recognized, 1=set, 2=reset,
// 3=permanently set, 4=permanently reset).
type ModeReportValue int

const (
	ModeNotRecognized ModeReportValue = iota
	ModeSet
	ModeReset
	ModePermanentlySet
	ModePermanentlyReset
)

// WindowManipulationResult carries the handful of integers CSI `t`
// queries can return (e.g. text area size in characters or pixels).
type WindowManipulationResult struct {
	Handled bool
	Values  []int
}

// DispatchTarget is the ~110-operation abstract surface the Dispatch
// Engine calls once it has finalized a sequence's identifier and
// parameters (spec.md §6.2). Implementations (a screen buffer, a
// renderer, a TTY passthrough) live outside this module; none is
// provided here beyond the vtparsetest.Recorder test spy.
type DispatchTarget interface {
	// Printing
	Print(ch rune) bool
	PrintString(s string) bool
	WarningBell() bool

	// Cursor motion
	CarriageReturn() bool
	LineFeed() bool
	CursorUp(n int) bool
	CursorDown(n int) bool
	CursorForward(n int) bool
	CursorBackward(n int) bool
	CursorNextLine(n int) bool
	CursorPrevLine(n int) bool
	CursorHorizontalPositionAbsolute(col int) bool
	VerticalLinePositionAbsolute(row int) bool
	HorizontalPositionRelative(n int) bool
	VerticalPositionRelative(n int) bool
	CursorPosition(row, col int) bool
	CursorSaveState() bool
	CursorRestoreState() bool

	// Editing
	InsertCharacter(n int) bool
	DeleteCharacter(n int) bool
	ScrollUp(n int) bool
	ScrollDown(n int) bool
	InsertLine(n int) bool
	DeleteLine(n int) bool
	InsertColumn(n int) bool
	DeleteColumn(n int) bool
	EraseInDisplay(kind int) bool
	EraseInLine(kind int) bool
	SelectiveEraseInDisplay(kind int) bool
	SelectiveEraseInLine(kind int) bool
	EraseCharacters(n int) bool

	// Rectangles
	ChangeAttributesRectangularArea(top, left, bottom, right int, sgr []SGRParam) bool
	ReverseAttributesRectangularArea(top, left, bottom, right int, sgr []SGRParam) bool
	CopyRectangularArea(top, left, bottom, right, dstTop, dstLeft int) bool
	FillRectangularArea(ch rune, top, left, bottom, right int) bool
	EraseRectangularArea(top, left, bottom, right int) bool
	SelectiveEraseRectangularArea(top, left, bottom, right int) bool
	RequestChecksumRectangularArea(id, top, left, bottom, right int) bool
	SelectAttributeChangeExtent(extent int) bool

	// Modes
	SetMode(mode ModeParam) bool
	ResetMode(mode ModeParam) bool
	RequestMode(mode ModeParam) ModeReportValue
	SetKeypadMode(application bool) bool
	SetAnsiMode(ansi bool) bool
	SetTopBottomScrollingMargins(top, bottom int) bool
	SetLeftRightScrollingMargins(left, right int) bool
	AcceptC1Controls(accept bool) bool

	// Graphics
	SetGraphicsRendition(params []SGRParam) bool
	PushGraphicsRendition(stackEntries []int) bool
	PopGraphicsRendition() bool
	SetLineRendition(lineKind int) bool
	SetCharacterProtectionAttribute(n int) bool

	// Reports
	DeviceStatusReport(n int) bool
	DeviceAttributes() bool
	SecondaryDeviceAttributes() bool
	TertiaryDeviceAttributes() bool
	Vt52DeviceAttributes() bool
	RequestTerminalParameters(n int) bool
	RequestDisplayedExtent() bool
	RequestPresentationStateReport(n int) StringHandler

	// Character sets
	DesignateCodingSystem(id byte) bool
	Designate94Charset(gset int, charset byte) bool
	Designate96Charset(gset int, charset byte) bool
	LockingShift(gset int) bool
	LockingShiftRight(gset int) bool
	SingleShift(gset int) bool
	AnnounceCodeStructure(id byte) bool
	RequestUserPreferenceCharset() bool
	AssignUserPreferenceCharset(charset string) bool

	// Resets
	SoftReset() bool
	HardReset() bool
	ScreenAlignmentPattern() bool

	// Tabs/pages
	HorizontalTabSet() bool
	ForwardTab(n int) bool
	BackwardsTab(n int) bool
	TabClear(kind int) bool
	TabSet(col int) bool
	NextPage(n int) bool
	PrecedingPage(n int) bool
	PagePositionAbsolute(n int) bool
	PagePositionRelative(n int) bool
	PagePositionBack(n int) bool

	// Cursor style/color
	SetCursorStyle(style int, blinking bool) bool
	SetCursorColor(colorSpec string) bool

	// Window/clipboard/hyperlink/OSC extensions
	SetWindowTitle(title string) bool
	SetColorTableEntry(index int, colorSpec string) bool
	SetDefaultForeground(colorSpec string) bool
	SetDefaultBackground(colorSpec string) bool
	AssignColor(table int, index int, colorSpec string) bool
	WindowManipulation(params []int) WindowManipulationResult
	SetClipboard(targets string, data []byte) bool
	AddHyperlink(id, uri string) bool
	EndHyperlink() bool
	DoConEmuAction(payload string) bool
	DoITerm2Action(payload string) bool
	DoFinalTermAction(payload string) bool
	DoVsCodeAction(payload string) bool

	// Strings/macros, each a DCS-backed transfer delivered a character at
	// a time via the returned StringHandler (nil means unsupported).
	DownloadDRCS(params []int) StringHandler
	DefineMacro(params []int) StringHandler
	InvokeMacro(id int) bool
	RestoreTerminalState(params []int) StringHandler
	RequestSetting(name string) bool
	RestorePresentationState(params []int) StringHandler
	PlaySounds(params []int) StringHandler
}

// engine is the internal callback surface the state machine (state.go)
// invokes at the grammar's designated transitions (spec.md §4.3's "calls
// engine actions"). outputEngine (dispatch.go) is the sole production
// implementation, translating these into DispatchTarget calls; a
// minimal inputEngine (dispatch_input.go) exists for the Input Dispatch
// Engine side spec.md §2/§6 mentions in passing.
type engine interface {
	Clear()
	Print(r rune)
	Execute(c byte)
	// EscDispatch, CsiDispatch and OscDispatch each receive currentRun,
	// the raw bytes of the sequence just recognized, so a failing
	// dispatch can hand them to the pass-through sink verbatim alongside
	// any already-cached partial sequence (spec.md §4.4).
	EscDispatch(id ID, currentRun []byte)
	CsiDispatch(id ID, params *P, currentRun []byte)
	OscStart()
	OscPut(r rune)
	OscDispatch(code int, terminator byte, currentRun []byte)
	DcsDispatch(id ID, params *P) StringHandler
	Vt52Dispatch(final byte, args []byte)
	Ss3Dispatch(id ID, params *P)

	// TakeShutdown returns and clears any ErrShutdown recorded by the
	// most recent action (spec.md §7's one un-demoted fault), so Parser
	// can re-raise it to the ProcessString caller instead of swallowing
	// it as a plain dispatch failure.
	TakeShutdown() error
}
