// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package scrape

import (
	"context"
	"encoding/base64"
	"strings"
)

// defaultCoverType is used when the image server sends no Content-Type.
const defaultCoverType = "image/jpeg"

// maxCoverBytes caps one downloaded cover.
const maxCoverBytes = 10 << 20

// coverDataURI downloads src and inlines it as a data URI.
func (f *fetcher) coverDataURI(ctx context.Context, src string) (string, error) {
	resp, err := f.get(ctx, src, maxCoverBytes)
	if err != nil {
		return "", err
	}
	return DataURI(resp.contentType, resp.body), nil
}

// DataURI encodes body as data:<contentType>;base64,<payload>.
func DataURI(contentType string, body []byte) string {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		contentType = defaultCoverType
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(body)
}
