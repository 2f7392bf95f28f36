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
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Implementation of file access using local file system
type FSAccess struct {
}

func (fa *FSAccess) ListObjects(rootPath string, prefix string) ([]string, error) {
	result := []string{}

	rootOnly := filepath.Clean(rootPath)

	err := filepath.Walk(rootOnly, func(pathFound string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		// pathFound contains the root directory, so we chop it off
		rel, err := filepath.Rel(rootOnly, pathFound)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if strings.HasPrefix(rel, prefix) {
			result = append(result, rel)
		}
		return nil
	})

	return result, err
}

func (fa *FSAccess) ObjectExists(rootPath string, path string) (bool, error) {
	info, err := os.Stat(fa.filePath(rootPath, path))
	if err == nil {
		return !info.IsDir(), nil
	}
	if fa.IsNotFoundError(err) {
		return false, nil
	}
	return false, err
}

func (fa *FSAccess) ReadObject(rootPath string, path string) ([]byte, error) {
	return os.ReadFile(fa.filePath(rootPath, path))
}

func (fa *FSAccess) WriteObject(rootPath string, path string, data []byte) error {
	fullPath := fa.filePath(rootPath, path)

	// Ensure any subdirs in between are created
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}

	// Write the file out, this will create if needed else truncate and write
	return os.WriteFile(fullPath, data, 0644)
}

func (fa *FSAccess) DeleteObject(rootPath string, path string) error {
	return os.Remove(fa.filePath(rootPath, path))
}

func (fa *FSAccess) IsNotFoundError(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func (fa *FSAccess) filePath(rootPath string, path string) string {
	return filepath.Join(rootPath, filepath.FromSlash(path))
}
