package util

import (
	"mime/multipart"
	"net/http"
)

type MultipartFile struct {
	Field  string
	File   multipart.File
	Header *multipart.FileHeader
}

type ParsedMultipart struct {
	Values map[string]string
	Files  []MultipartFile
}

func (pm *ParsedMultipart) CloseFiles() {
	for _, mf := range pm.Files {
		if mf.File != nil {
			mf.File.Close()
		}
	}
}

func (pm *ParsedMultipart) FileByKey(key string) *MultipartFile {
	for i := range pm.Files {
		if pm.Files[i].Field == key {
			return &pm.Files[i]
		}
	}

	return nil
}

// ParseMultipart parses a multipart form, holding up to maxMemory bytes in
// memory and capping the whole body at maxBody. Oversized file parts are NOT
// filtered here; per-file limits are enforced at the validation boundary so
// the caller can answer with a precise error.
func ParseMultipart(w http.ResponseWriter, r *http.Request, maxMemory, maxBody int64) (*ParsedMultipart, error) {
	if maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		return nil, err
	}

	return &ParsedMultipart{
		Values: extractValues(r),
		Files:  extractFiles(r),
	}, nil
}

func extractValues(r *http.Request) map[string]string {
	values := make(map[string]string)

	if r.MultipartForm != nil {
		for key, arr := range r.MultipartForm.Value {
			if len(arr) > 0 {
				values[key] = arr[0]
			}
		}
	}

	return values
}

func extractFiles(r *http.Request) []MultipartFile {
	var filesOut []MultipartFile

	for key, fhs := range r.MultipartForm.File {
		for _, fh := range fhs {
			f, err := fh.Open()
			if err != nil {
				continue
			}

			filesOut = append(filesOut, MultipartFile{Field: key, File: f, Header: fh})
		}
	}

	return filesOut
}
