package status

import "testing"

func TestConfirmCell_AcceptRunsLatest(t *testing.T) {
	var c ConfirmCell
	var first, second int
	c.Show("Download Map?", "first", func() { first++ })
	c.Show("Download Mod?", "second", func() { second++ })

	if got := c.Copy(); !got.Active || got.Message != "second" {
		t.Fatalf("expected superseding request, got %+v", got)
	}
	if !c.Accept() {
		t.Fatal("Accept reported nothing outstanding")
	}
	if first != 0 || second != 1 {
		t.Fatalf("first=%d second=%d, want 0/1", first, second)
	}
	if c.Copy().Active {
		t.Fatal("request still active after Accept")
	}
	if c.Accept() {
		t.Fatal("second Accept should be a no-op")
	}
}

func TestConfirmCell_Decline(t *testing.T) {
	var c ConfirmCell
	called := false
	c.Show("Download Complete", "connect?", func() { called = true })
	c.Decline()

	if c.Copy().Active {
		t.Fatal("request still active after Decline")
	}
	if c.Accept() || called {
		t.Fatal("declined request must not run")
	}
}
