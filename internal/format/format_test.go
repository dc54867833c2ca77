package format

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFormatAlignsDeclarations(t *testing.T) {
	in := "ENTITY e IS   \n    PORT(\n        a : IN STD_LOGIC;\n        data_out : OUT STD_LOGIC\n    );\n\n\n\nEND ENTITY;"
	want := "ENTITY e IS\n    PORT(\n        a        : IN STD_LOGIC;\n        data_out : OUT STD_LOGIC\n    );\n\nEND ENTITY;\n"
	if diff := cmp.Diff(want, Format(in)); diff != "" {
		t.Fatalf("Format mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatKeepsSeparateBlocks(t *testing.T) {
	in := "    SIGNAL s : STD_LOGIC;\n    SIGNAL long_name : STD_LOGIC;\nBEGIN\n    y <= a;\n"
	want := "    SIGNAL s         : STD_LOGIC;\n    SIGNAL long_name : STD_LOGIC;\nBEGIN\n    y <= a;\n"
	if diff := cmp.Diff(want, Format(in)); diff != "" {
		t.Fatalf("Format mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatIsIdempotent(t *testing.T) {
	in := "A : x;\nbb : y;\n\n\nc <= d;\n"
	once := Format(in)
	if twice := Format(once); twice != once {
		t.Fatalf("second pass changed output:\n%q\n%q", once, twice)
	}
}

func TestFormatWrapsWideComments(t *testing.T) {
	in := "-- " + strings.Repeat("字", 50) + "\nENTITY e IS\n"
	want := "-- " + strings.Repeat("字", 38) + "\n-- " + strings.Repeat("字", 12) + "\nENTITY e IS\n"
	if diff := cmp.Diff(want, Format(in)); diff != "" {
		t.Fatalf("Format mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatWrapsCommentsAtWords(t *testing.T) {
	words := func(n int) string { return strings.TrimSpace(strings.Repeat("word ", n)) }
	in := "    -- " + words(20) + "\n"
	want := "    -- " + words(14) + "\n    -- " + words(6) + "\n"
	got := Format(in)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Format mismatch (-want +got):\n%s", diff)
	}
	if again := Format(got); again != got {
		t.Fatalf("wrapping is not idempotent:\n%q", again)
	}
}
