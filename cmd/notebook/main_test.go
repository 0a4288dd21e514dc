package main

import "testing"

func TestParsePortFlagsBothGiven(t *testing.T) {
	in, out := parsePortFlags([]string{"-in2", "-out0"})
	if in == nil || *in != 2 {
		t.Fatalf("expected in=2, got %v", in)
	}
	if out == nil || *out != 0 {
		t.Fatalf("expected out=0, got %v", out)
	}
}

func TestParsePortFlagsAnyOrder(t *testing.T) {
	in, out := parsePortFlags([]string{"-out3", "-in1"})
	if in == nil || *in != 1 {
		t.Fatalf("expected in=1, got %v", in)
	}
	if out == nil || *out != 3 {
		t.Fatalf("expected out=3, got %v", out)
	}
}

func TestParsePortFlagsNoneGiven(t *testing.T) {
	in, out := parsePortFlags(nil)
	if in != nil || out != nil {
		t.Fatalf("expected both nil, got in=%v out=%v", in, out)
	}
}

func TestParsePortFlagsIgnoresUnrecognized(t *testing.T) {
	in, out := parsePortFlags([]string{"-script", "foo.txt", "-in5"})
	if in == nil || *in != 5 {
		t.Fatalf("expected in=5, got %v", in)
	}
	if out != nil {
		t.Fatalf("expected out=nil, got %v", out)
	}
}
