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
	"bytes"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// fakeS3 keeps objects in a map; anything not overridden panics via the nil embedded interface
type fakeS3 struct {
	s3iface.S3API
	objects map[string][]byte
}

func (f *fakeS3) PutObject(in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Bucket+"/"+*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadObject(in *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
	if _, ok := f.objects[*in.Bucket+"/"+*in.Key]; !ok {
		return nil, awserr.New("NotFound", "not found", nil)
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) GetObject(in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, awserr.New(s3.ErrCodeNoSuchKey, "no such key", nil)
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestS3AccessRoundTrip(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	fa := MakeS3Access(fake)

	exists, err := fa.ObjectExists("bucket", "a/true_color.png")
	if err != nil || exists {
		t.Fatalf("exists before write: %v, %v", exists, err)
	}

	if err := fa.WriteObject("bucket", "a/true_color.png", []byte("png")); err != nil {
		t.Fatalf("write: %v", err)
	}

	exists, err = fa.ObjectExists("bucket", "a/true_color.png")
	if err != nil || !exists {
		t.Fatalf("exists after write: %v, %v", exists, err)
	}

	data, err := fa.ReadObject("bucket", "a/true_color.png")
	if err != nil || string(data) != "png" {
		t.Fatalf("read: %q, %v", data, err)
	}

	_, err = fa.ReadObject("bucket", "missing")
	if !fa.IsNotFoundError(err) {
		t.Errorf("expected not found, got %v", err)
	}
}
