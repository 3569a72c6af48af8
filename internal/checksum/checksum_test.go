package checksum

import "testing"

func TestSum(t *testing.T) {
	// Known SHA-256 of the empty input.
	if got := Sum(nil); got != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Errorf("Sum(nil) = %q", got)
	}
	if Sum([]byte("a")) == Sum([]byte("b")) {
		t.Error("different inputs share a checksum")
	}
}

func TestETagRoundTrip(t *testing.T) {
	sum := Sum([]byte("post"))
	for _, tag := range []string{ETag(sum), sum, "W/" + ETag(sum), " " + ETag(sum) + " "} {
		if got := FromETag(tag); got != sum {
			t.Errorf("FromETag(%q) = %q", tag, got)
		}
	}
}
