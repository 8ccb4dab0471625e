package model

import "testing"

func TestFileStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to FileStatus
		want     bool
	}{
		{FileStatusNotUploaded, FileStatusUploading, true},
		{FileStatusUploading, FileStatusUploaded, true},
		{FileStatusUploaded, FileStatusProcessing, true},
		{FileStatusProcessing, FileStatusPublished, true},
		{FileStatusProcessing, FileStatusProcessing, true},
		{FileStatusPublished, FileStatusProcessing, false},
		{FileStatusUploaded, FileStatusUploading, false},
		{FileStatusPublished, FileStatusError, true},
		{FileStatusUploading, FileStatusError, true},
		{FileStatusError, FileStatusProcessing, true},
		{FileStatusError, FileStatusPublished, false},
		{FileStatusError, FileStatusDeleted, true},
		{FileStatusPublished, FileStatusDeleted, true},
		{FileStatusDeleted, FileStatusError, false},
		{FileStatusDeleted, FileStatusUploaded, false},
		{FileStatus("BOGUS"), FileStatusUploaded, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestGenericTypeOf(t *testing.T) {
	tests := map[string]GenericType{
		"image/jpeg":                                                              GenericTypeImage,
		"IMAGE/PNG":                                                               GenericTypeImage,
		"video/mp4":                                                               GenericTypeVideo,
		"audio/mpeg":                                                              GenericTypeAudio,
		"font/woff2":                                                              GenericTypeFont,
		"text/plain; charset=utf-8":                                               GenericTypeText,
		"text/x-python":                                                           GenericTypeCode,
		"application/pdf":                                                         GenericTypeDocument,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": GenericTypeDocument,
		"application/zip":                                                         GenericTypeCompressed,
		"application/x-elf":                                                       GenericTypeExecutable,
		"application/octet-stream":                                                GenericTypeBinary,
		"application/x-unknown":                                                   GenericTypeOther,
		"":                                                                        GenericTypeOther,
	}
	for mt, want := range tests {
		if got := GenericTypeOf(mt); got != want {
			t.Errorf("GenericTypeOf(%q) = %q; want %q", mt, got, want)
		}
	}
}

func TestStoredFile_IsMedia(t *testing.T) {
	for gt, want := range map[GenericType]bool{
		GenericTypeImage:    true,
		GenericTypeVideo:    true,
		GenericTypeDocument: false,
		GenericTypeText:     false,
	} {
		f := &StoredFile{GenericType: gt}
		if got := f.IsMedia(); got != want {
			t.Errorf("IsMedia(%s) = %v; want %v", gt, got, want)
		}
	}
}

func TestSizeTag_IsThumbnail(t *testing.T) {
	for _, tag := range []SizeTag{SizeTagThumbLarge, SizeTagThumbMedium, SizeTagThumbSmall} {
		if !tag.IsThumbnail() {
			t.Errorf("%s should be a thumbnail tag", tag)
		}
	}
	for _, tag := range []SizeTag{SizeTag8K, SizeTag4K, SizeTag3K, SizeTag2K, SizeTag1K, SizeTagVGA} {
		if tag.IsThumbnail() {
			t.Errorf("%s should not be a thumbnail tag", tag)
		}
	}
}
