/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package input produces the opaque values the document consumes: decoded
// bitmaps from files or streams and text from the system clipboard.
package input

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register decoders
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"pagecomposer/internal/domain"
)

// ErrEmptyImage is returned for images without pixels.
var ErrEmptyImage = errors.New("image has no pixels")

// Extensions lists the file suffixes DecodeImageFile understands.
var Extensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

// DecodeImage reads any registered image format.
func DecodeImage(r io.Reader) (*domain.Bitmap, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	bm := domain.NewBitmap(img)
	if !bm.Valid() {
		return nil, ErrEmptyImage
	}
	return bm, nil
}

func DecodeImageFile(path string) (*domain.Bitmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	bm, err := DecodeImage(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return bm, nil
}

// IsImageFile reports whether path has one of the supported extensions.
func IsImageFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}
