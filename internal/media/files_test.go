package media

import "testing"

func TestCategory(t *testing.T) {
	cases := []struct {
		name     string
		category string
		ok       bool
	}{
		{"IMG_0001.jpg", "image", true},
		{"IMG_0002.JPEG", "image", true},
		{"IMG_0003.HEIC", "image", true},
		{"clip.mp4", "video", true},
		{"clip.MOV", "video", true},
		{"notes.txt", "", false},
		{"archive.zip", "", false},
		{"noextension", "", false},
	}
	for _, c := range cases {
		category, ok := Category(c.name)
		if category != c.category || ok != c.ok {
			t.Errorf("Category(%q) = (%q, %v), ожидалось (%q, %v)", c.name, category, ok, c.category, c.ok)
		}
	}
}

func TestIsHEIC(t *testing.T) {
	for _, name := range []string{"a.heic", "b.HEIC", "c.HeIc"} {
		if !IsHEIC(name) {
			t.Errorf("IsHEIC(%q) должно быть true", name)
		}
	}
	if IsHEIC("a.jpg") || IsHEIC("heic.png") {
		t.Error("не-HEIC файлы не должны распознаваться как HEIC")
	}
}

func TestJPEGName(t *testing.T) {
	cases := map[string]string{
		"IMG_0001.heic":   "IMG_0001.jpg",
		"IMG_0002.HEIC":   "IMG_0002.jpg",
		"trip.photo.heic": "trip.photo.jpg",
	}
	for in, want := range cases {
		if got := JPEGName(in); got != want {
			t.Errorf("JPEGName(%q) = %q, ожидалось %q", in, got, want)
		}
	}
}

func TestConvertHEICInvalidInput(t *testing.T) {
	// Ошибка конвертации одного файла фиксируется per-file и не прерывает пакет,
	// поэтому важно, что негодные данные дают ошибку, а не панику.
	if _, _, err := ConvertHEIC("broken.heic", []byte("совсем не HEIC")); err == nil {
		t.Error("для негодных данных ожидалась ошибка")
	}
}
