// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package vtparsetest provides a recording vtparse.DispatchTarget spy for
// tests, in place of a mocking library — the teacher never pulls one in
// anywhere in the pack, so a hand-written spy matches house style
// (SPEC_FULL.md §8).
package vtparsetest

import "github.com/ericwq/vtparse"

// Call is one recorded Dispatch Target invocation: the method name and
// its arguments, loosely typed so a test can assert on whichever ones it
// cares about with a type switch or fmt.Sprintf comparison.
type Call struct {
	Name string
	Args []any
}

// Recorder implements vtparse.DispatchTarget, appending every call to
// Calls and returning true unless the test pre-arms a failure for that
// exact method name via FailOn.
type Recorder struct {
	Calls  []Call
	FailOn map[string]bool
}

func NewRecorder() *Recorder {
	return &Recorder{FailOn: map[string]bool{}}
}

func (r *Recorder) record(name string, args ...any) bool {
	r.Calls = append(r.Calls, Call{Name: name, Args: args})
	return !r.FailOn[name]
}

func (r *Recorder) Reset() { r.Calls = r.Calls[:0] }

func (r *Recorder) Print(ch rune) bool        { return r.record("Print", ch) }
func (r *Recorder) PrintString(s string) bool { return r.record("PrintString", s) }
func (r *Recorder) WarningBell() bool         { return r.record("WarningBell") }

func (r *Recorder) CarriageReturn() bool { return r.record("CarriageReturn") }
func (r *Recorder) LineFeed() bool       { return r.record("LineFeed") }

func (r *Recorder) CursorUp(n int) bool       { return r.record("CursorUp", n) }
func (r *Recorder) CursorDown(n int) bool     { return r.record("CursorDown", n) }
func (r *Recorder) CursorForward(n int) bool  { return r.record("CursorForward", n) }
func (r *Recorder) CursorBackward(n int) bool { return r.record("CursorBackward", n) }
func (r *Recorder) CursorNextLine(n int) bool { return r.record("CursorNextLine", n) }
func (r *Recorder) CursorPrevLine(n int) bool { return r.record("CursorPrevLine", n) }
func (r *Recorder) CursorHorizontalPositionAbsolute(col int) bool {
	return r.record("CursorHorizontalPositionAbsolute", col)
}
func (r *Recorder) VerticalLinePositionAbsolute(row int) bool {
	return r.record("VerticalLinePositionAbsolute", row)
}
func (r *Recorder) HorizontalPositionRelative(n int) bool {
	return r.record("HorizontalPositionRelative", n)
}
func (r *Recorder) VerticalPositionRelative(n int) bool {
	return r.record("VerticalPositionRelative", n)
}
func (r *Recorder) CursorPosition(row, col int) bool { return r.record("CursorPosition", row, col) }
func (r *Recorder) CursorSaveState() bool            { return r.record("CursorSaveState") }
func (r *Recorder) CursorRestoreState() bool         { return r.record("CursorRestoreState") }

func (r *Recorder) InsertCharacter(n int) bool { return r.record("InsertCharacter", n) }
func (r *Recorder) DeleteCharacter(n int) bool { return r.record("DeleteCharacter", n) }
func (r *Recorder) ScrollUp(n int) bool        { return r.record("ScrollUp", n) }
func (r *Recorder) ScrollDown(n int) bool      { return r.record("ScrollDown", n) }
func (r *Recorder) InsertLine(n int) bool      { return r.record("InsertLine", n) }
func (r *Recorder) DeleteLine(n int) bool      { return r.record("DeleteLine", n) }
func (r *Recorder) InsertColumn(n int) bool    { return r.record("InsertColumn", n) }
func (r *Recorder) DeleteColumn(n int) bool    { return r.record("DeleteColumn", n) }
func (r *Recorder) EraseInDisplay(kind int) bool { return r.record("EraseInDisplay", kind) }
func (r *Recorder) EraseInLine(kind int) bool    { return r.record("EraseInLine", kind) }
func (r *Recorder) SelectiveEraseInDisplay(kind int) bool {
	return r.record("SelectiveEraseInDisplay", kind)
}
func (r *Recorder) SelectiveEraseInLine(kind int) bool {
	return r.record("SelectiveEraseInLine", kind)
}
func (r *Recorder) EraseCharacters(n int) bool { return r.record("EraseCharacters", n) }

func (r *Recorder) ChangeAttributesRectangularArea(top, left, bottom, right int, sgr []vtparse.SGRParam) bool {
	return r.record("ChangeAttributesRectangularArea", top, left, bottom, right, sgr)
}
func (r *Recorder) ReverseAttributesRectangularArea(top, left, bottom, right int, sgr []vtparse.SGRParam) bool {
	return r.record("ReverseAttributesRectangularArea", top, left, bottom, right, sgr)
}
func (r *Recorder) CopyRectangularArea(top, left, bottom, right, dstTop, dstLeft int) bool {
	return r.record("CopyRectangularArea", top, left, bottom, right, dstTop, dstLeft)
}
func (r *Recorder) FillRectangularArea(ch rune, top, left, bottom, right int) bool {
	return r.record("FillRectangularArea", ch, top, left, bottom, right)
}
func (r *Recorder) EraseRectangularArea(top, left, bottom, right int) bool {
	return r.record("EraseRectangularArea", top, left, bottom, right)
}
func (r *Recorder) SelectiveEraseRectangularArea(top, left, bottom, right int) bool {
	return r.record("SelectiveEraseRectangularArea", top, left, bottom, right)
}
func (r *Recorder) RequestChecksumRectangularArea(id, top, left, bottom, right int) bool {
	return r.record("RequestChecksumRectangularArea", id, top, left, bottom, right)
}
func (r *Recorder) SelectAttributeChangeExtent(extent int) bool {
	return r.record("SelectAttributeChangeExtent", extent)
}

func (r *Recorder) SetMode(mode vtparse.ModeParam) bool   { return r.record("SetMode", mode) }
func (r *Recorder) ResetMode(mode vtparse.ModeParam) bool { return r.record("ResetMode", mode) }
func (r *Recorder) RequestMode(mode vtparse.ModeParam) vtparse.ModeReportValue {
	r.record("RequestMode", mode)
	return vtparse.ModeSet
}
func (r *Recorder) SetKeypadMode(application bool) bool { return r.record("SetKeypadMode", application) }
func (r *Recorder) SetAnsiMode(ansi bool) bool          { return r.record("SetAnsiMode", ansi) }
func (r *Recorder) SetTopBottomScrollingMargins(top, bottom int) bool {
	return r.record("SetTopBottomScrollingMargins", top, bottom)
}
func (r *Recorder) SetLeftRightScrollingMargins(left, right int) bool {
	return r.record("SetLeftRightScrollingMargins", left, right)
}
func (r *Recorder) AcceptC1Controls(accept bool) bool { return r.record("AcceptC1Controls", accept) }

func (r *Recorder) SetGraphicsRendition(params []vtparse.SGRParam) bool {
	return r.record("SetGraphicsRendition", params)
}
func (r *Recorder) PushGraphicsRendition(stackEntries []int) bool {
	return r.record("PushGraphicsRendition", stackEntries)
}
func (r *Recorder) PopGraphicsRendition() bool { return r.record("PopGraphicsRendition") }
func (r *Recorder) SetLineRendition(lineKind int) bool { return r.record("SetLineRendition", lineKind) }
func (r *Recorder) SetCharacterProtectionAttribute(n int) bool {
	return r.record("SetCharacterProtectionAttribute", n)
}

func (r *Recorder) DeviceStatusReport(n int) bool { return r.record("DeviceStatusReport", n) }
func (r *Recorder) DeviceAttributes() bool         { return r.record("DeviceAttributes") }
func (r *Recorder) SecondaryDeviceAttributes() bool { return r.record("SecondaryDeviceAttributes") }
func (r *Recorder) TertiaryDeviceAttributes() bool  { return r.record("TertiaryDeviceAttributes") }
func (r *Recorder) Vt52DeviceAttributes() bool      { return r.record("Vt52DeviceAttributes") }
func (r *Recorder) RequestTerminalParameters(n int) bool {
	return r.record("RequestTerminalParameters", n)
}
func (r *Recorder) RequestDisplayedExtent() bool { return r.record("RequestDisplayedExtent") }
func (r *Recorder) RequestPresentationStateReport(n int) vtparse.StringHandler {
	r.record("RequestPresentationStateReport", n)
	return nil
}

func (r *Recorder) DesignateCodingSystem(id byte) bool { return r.record("DesignateCodingSystem", id) }
func (r *Recorder) Designate94Charset(gset int, charset byte) bool {
	return r.record("Designate94Charset", gset, charset)
}
func (r *Recorder) Designate96Charset(gset int, charset byte) bool {
	return r.record("Designate96Charset", gset, charset)
}
func (r *Recorder) LockingShift(gset int) bool      { return r.record("LockingShift", gset) }
func (r *Recorder) LockingShiftRight(gset int) bool { return r.record("LockingShiftRight", gset) }
func (r *Recorder) SingleShift(gset int) bool       { return r.record("SingleShift", gset) }
func (r *Recorder) AnnounceCodeStructure(id byte) bool {
	return r.record("AnnounceCodeStructure", id)
}
func (r *Recorder) RequestUserPreferenceCharset() bool {
	return r.record("RequestUserPreferenceCharset")
}
func (r *Recorder) AssignUserPreferenceCharset(charset string) bool {
	return r.record("AssignUserPreferenceCharset", charset)
}

func (r *Recorder) SoftReset() bool             { return r.record("SoftReset") }
func (r *Recorder) HardReset() bool             { return r.record("HardReset") }
func (r *Recorder) ScreenAlignmentPattern() bool { return r.record("ScreenAlignmentPattern") }

func (r *Recorder) HorizontalTabSet() bool     { return r.record("HorizontalTabSet") }
func (r *Recorder) ForwardTab(n int) bool      { return r.record("ForwardTab", n) }
func (r *Recorder) BackwardsTab(n int) bool    { return r.record("BackwardsTab", n) }
func (r *Recorder) TabClear(kind int) bool     { return r.record("TabClear", kind) }
func (r *Recorder) TabSet(col int) bool        { return r.record("TabSet", col) }
func (r *Recorder) NextPage(n int) bool        { return r.record("NextPage", n) }
func (r *Recorder) PrecedingPage(n int) bool   { return r.record("PrecedingPage", n) }
func (r *Recorder) PagePositionAbsolute(n int) bool { return r.record("PagePositionAbsolute", n) }
func (r *Recorder) PagePositionRelative(n int) bool { return r.record("PagePositionRelative", n) }
func (r *Recorder) PagePositionBack(n int) bool     { return r.record("PagePositionBack", n) }

func (r *Recorder) SetCursorStyle(style int, blinking bool) bool {
	return r.record("SetCursorStyle", style, blinking)
}
func (r *Recorder) SetCursorColor(colorSpec string) bool { return r.record("SetCursorColor", colorSpec) }

func (r *Recorder) SetWindowTitle(title string) bool { return r.record("SetWindowTitle", title) }
func (r *Recorder) SetColorTableEntry(index int, colorSpec string) bool {
	return r.record("SetColorTableEntry", index, colorSpec)
}
func (r *Recorder) SetDefaultForeground(colorSpec string) bool {
	return r.record("SetDefaultForeground", colorSpec)
}
func (r *Recorder) SetDefaultBackground(colorSpec string) bool {
	return r.record("SetDefaultBackground", colorSpec)
}
func (r *Recorder) AssignColor(table, index int, colorSpec string) bool {
	return r.record("AssignColor", table, index, colorSpec)
}
func (r *Recorder) WindowManipulation(params []int) vtparse.WindowManipulationResult {
	r.record("WindowManipulation", params)
	return vtparse.WindowManipulationResult{Handled: true}
}
func (r *Recorder) SetClipboard(targets string, data []byte) bool {
	return r.record("SetClipboard", targets, data)
}
func (r *Recorder) AddHyperlink(id, uri string) bool { return r.record("AddHyperlink", id, uri) }
func (r *Recorder) EndHyperlink() bool               { return r.record("EndHyperlink") }
func (r *Recorder) DoConEmuAction(payload string) bool   { return r.record("DoConEmuAction", payload) }
func (r *Recorder) DoITerm2Action(payload string) bool   { return r.record("DoITerm2Action", payload) }
func (r *Recorder) DoFinalTermAction(payload string) bool { return r.record("DoFinalTermAction", payload) }
func (r *Recorder) DoVsCodeAction(payload string) bool    { return r.record("DoVsCodeAction", payload) }

func (r *Recorder) DownloadDRCS(params []int) vtparse.StringHandler {
	r.record("DownloadDRCS", params)
	return nil
}
func (r *Recorder) DefineMacro(params []int) vtparse.StringHandler {
	r.record("DefineMacro", params)
	return nil
}
func (r *Recorder) InvokeMacro(id int) bool { return r.record("InvokeMacro", id) }
func (r *Recorder) RestoreTerminalState(params []int) vtparse.StringHandler {
	r.record("RestoreTerminalState", params)
	return nil
}
func (r *Recorder) RequestSetting(name string) bool { return r.record("RequestSetting", name) }
func (r *Recorder) RestorePresentationState(params []int) vtparse.StringHandler {
	r.record("RestorePresentationState", params)
	return nil
}
func (r *Recorder) PlaySounds(params []int) vtparse.StringHandler {
	r.record("PlaySounds", params)
	return nil
}

var _ vtparse.DispatchTarget = (*Recorder)(nil)
