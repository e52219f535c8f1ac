package system

import "testing"

func TestDialogueTypewriter(t *testing.T) {
	d := NewDialogueSystem(map[string][]string{"intro": {"hi", "yo"}})
	d.SetPace(1, 2)
	var done []string
	d.Subscribe(func(id string) { done = append(done, id) })

	d.PlayScript("intro")
	if !d.Playing() || d.ID() != "intro" || d.Text() != "" {
		t.Fatalf("expected intro to start empty, got %v %q %q", d.Playing(), d.ID(), d.Text())
	}
	d.Update(nil)
	if d.Text() != "h" {
		t.Fatalf("expected one character, got %q", d.Text())
	}
	d.Update(nil)
	if d.Text() != "hi" {
		t.Fatalf("expected full line, got %q", d.Text())
	}
	d.Update(nil)
	d.Update(nil)
	if d.Text() != "" {
		t.Fatalf("expected second line to start after hold, got %q", d.Text())
	}
	for i := 0; i < 4; i++ {
		d.Update(nil)
	}
	if d.Playing() || len(done) != 1 || done[0] != "intro" {
		t.Fatalf("expected intro to complete once, playing=%v done=%v", d.Playing(), done)
	}
}

func TestDialogueUnknownCompletesImmediately(t *testing.T) {
	d := NewDialogueSystem(nil)
	var done []string
	d.Subscribe(func(id string) { done = append(done, id) })
	d.PlayScript("missing")
	if d.Playing() || len(done) != 1 || done[0] != "missing" {
		t.Fatalf("expected immediate completion, got playing=%v done=%v", d.Playing(), done)
	}
}

func TestDialogueOneShotUnsubscribe(t *testing.T) {
	d := NewDialogueSystem(nil)
	calls := 0
	var unsub func()
	unsub = d.Subscribe(func(string) {
		calls++
		unsub()
	})
	other := 0
	d.Subscribe(func(string) { other++ })

	d.PlayScript("a")
	d.PlayScript("b")
	if calls != 1 || other != 2 {
		t.Fatalf("expected one-shot=1 and other=2, got %d %d", calls, other)
	}
}

func TestDialogueReplaceAndSkip(t *testing.T) {
	d := NewDialogueSystem(map[string][]string{"long": {"abcdef"}})
	var done []string
	d.Subscribe(func(id string) { done = append(done, id) })

	d.PlayScript("long")
	d.PlayText("look")
	if len(done) != 1 || done[0] != "long" {
		t.Fatalf("expected replaced script to complete, got %v", done)
	}
	d.Skip()
	if d.Text() != "look" {
		t.Fatalf("expected skip to reveal the line, got %q", d.Text())
	}
	d.Skip()
	if d.Playing() || len(done) != 2 || done[1] != "" {
		t.Fatalf("expected flavor text to complete with empty id, got %v", done)
	}
}
