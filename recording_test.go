// SPDX-License-Identifier: GPL-3.0-or-later

package bipipe

// recordingSink is a [Sink] that appends every call it receives, in order,
// to a single slice of tagged strings, plus the payloads themselves so
// tests can assert on both order and content.
type recordingSink[D, U any] struct {
	calls    []string
	commands []D
	events   []U
	cmdErrs  []error
	evtErrs  []error
}

func (s *recordingSink[D, U]) OnCommand(cmd D) {
	s.calls = append(s.calls, "cmd")
	s.commands = append(s.commands, cmd)
}

func (s *recordingSink[D, U]) OnCommandFailure(err error) {
	s.calls = append(s.calls, "cmd-fail")
	s.cmdErrs = append(s.cmdErrs, err)
}

func (s *recordingSink[D, U]) OnEvent(evt U) {
	s.calls = append(s.calls, "evt")
	s.events = append(s.events, evt)
}

func (s *recordingSink[D, U]) OnEventFailure(err error) {
	s.calls = append(s.calls, "evt-fail")
	s.evtErrs = append(s.evtErrs, err)
}
