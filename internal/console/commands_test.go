package console

import (
	"strings"
	"testing"
)

type fakeController struct {
	toggled    []int
	toggleErr  error
	saved      bool
	saveErr    error
	reset      bool
	portLines  []string
	portErr    error
	statusByN  map[int]string
}

func (f *fakeController) Toggle(n int) error {
	f.toggled = append(f.toggled, n)
	return f.toggleErr
}

func (f *fakeController) Save() error {
	f.saved = true
	return f.saveErr
}

func (f *fakeController) Reset() {
	f.reset = true
}

func (f *fakeController) PortSummary(progName string) ([]string, error) {
	return f.portLines, f.portErr
}

func (f *fakeController) LoopStatus(n int) string {
	return f.statusByN[n]
}

func newFake() *fakeController {
	return &fakeController{statusByN: map[int]string{}}
}

func TestProcessCommandToggle(t *testing.T) {
	f := newFake()
	h := New(f, "notebook")

	if err := h.ProcessCommand("toggle 2"); err != nil {
		t.Fatalf("toggle 2: unexpected error: %v", err)
	}
	if len(f.toggled) != 1 || f.toggled[0] != 2 {
		t.Fatalf("expected slot 2 toggled, got %v", f.toggled)
	}
}

func TestProcessCommandToggleInvalidSlot(t *testing.T) {
	f := newFake()
	h := New(f, "notebook")

	if err := h.ProcessCommand("toggle 9"); err == nil {
		t.Fatal("expected error for out-of-range slot")
	}
	if len(f.toggled) != 0 {
		t.Fatalf("engine should not have been called, got %v", f.toggled)
	}
}

func TestProcessCommandSave(t *testing.T) {
	f := newFake()
	h := New(f, "notebook")

	if err := h.ProcessCommand("save"); err != nil {
		t.Fatalf("save: unexpected error: %v", err)
	}
	if !f.saved {
		t.Fatal("expected Save to be called")
	}
}

func TestProcessCommandReset(t *testing.T) {
	f := newFake()
	h := New(f, "notebook")

	if err := h.ProcessCommand("reset"); err != nil {
		t.Fatalf("reset: unexpected error: %v", err)
	}
	if !f.reset {
		t.Fatal("expected Reset to be called")
	}
}

func TestProcessCommandEmptyShowsStatus(t *testing.T) {
	f := newFake()
	f.statusByN[0] = "recording"
	h := New(f, "notebook")

	if err := h.ProcessCommand(""); err != nil {
		t.Fatalf("empty command: unexpected error: %v", err)
	}
}

func TestProcessCommandUnknown(t *testing.T) {
	f := newFake()
	h := New(f, "notebook")

	if err := h.ProcessCommand("frobnicate"); err == nil {
		t.Fatal("expected error for unknown command")
	}
}

func TestReadLoopStopsOnQuit(t *testing.T) {
	f := newFake()
	h := New(f, "notebook")

	reader := strings.NewReader("toggle 0\nquit\ntoggle 1\n")
	if err := h.ReadLoop(reader); err != nil {
		t.Fatalf("ReadLoop: unexpected error: %v", err)
	}
	if len(f.toggled) != 1 || f.toggled[0] != 0 {
		t.Fatalf("expected only slot 0 toggled before quit, got %v", f.toggled)
	}
}
