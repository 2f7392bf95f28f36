// Licensed to NASA JPL under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. NASA JPL licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package fileaccess

import (
	"fmt"
	"strings"
)

// FileAccess is the backing store the pipeline reads its extraction
// cache from and writes its artifacts to. The "root" is a directory on
// the local file system, or a bucket for S3.
type FileAccess interface {
	ListObjects(root string, prefix string) ([]string, error)
	ObjectExists(root string, path string) (bool, error)

	ReadObject(root string, path string) ([]byte, error)
	WriteObject(root string, path string, data []byte) error

	DeleteObject(root string, path string) error

	IsNotFoundError(err error) bool
}

// SplitS3Url turns s3://bucket/some/key into ("bucket", "some/key")
func SplitS3Url(url string) (string, string, error) {
	trimmedUrl := strings.TrimPrefix(url, "s3://")
	if trimmedUrl == url {
		return "", "", fmt.Errorf("not a valid S3 url: %v", url)
	}

	// Get the bit before the first slash, that's the bucket
	slashPos := strings.Index(trimmedUrl, "/")
	if slashPos <= 0 || slashPos == len(trimmedUrl)-1 {
		return "", "", fmt.Errorf("failed to get bucket and key from S3 url: %v", url)
	}

	return trimmedUrl[0:slashPos], trimmedUrl[slashPos+1:], nil
}
