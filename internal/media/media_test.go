package media

import "testing"

func TestKindForPath(t *testing.T) {
	cases := []struct {
		path string
		want Kind
	}{
		{"IMG_1081.JPG", KindPhoto},
		{"scan.jpeg", KindPhoto},
		{"diagram.PNG", KindPhoto},
		{"family.tiff", KindPhoto},
		{"clip.mp4", KindVideo},
		{"clip.MOV", KindVideo},
		{"old.wmv", KindVideo},
		{"notes.txt", KindOther},
		{"Thumbs.db", KindOther},
		{"noextension", KindOther},
	}
	for _, tc := range cases {
		if got := KindForPath(tc.path); got != tc.want {
			t.Errorf("KindForPath(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestIdentityStable(t *testing.T) {
	rec := Record{
		ArchiveName:    "slides",
		AlbumName:      "NZ - Rotorua",
		OutputFilename: "Rotorua_01.jpg",
		SizeBytes:      204800,
	}
	want := "slides/NZ - Rotorua/Rotorua_01.jpg|204800"
	if got := rec.Identity(); got != want {
		t.Fatalf("Identity() = %q, want %q", got, want)
	}
	if rec.Identity() != rec.Identity() {
		t.Fatal("identity must be deterministic")
	}
}
