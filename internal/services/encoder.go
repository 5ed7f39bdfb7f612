package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"mime/multipart"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const DefaultMIMEType = "application/octet-stream"

// InlinePart is one uploaded file as base64 text tagged with its MIME type.
// Raw, when set, holds the bytes Data was encoded from.
type InlinePart struct {
	Data     string
	MIMEType string
	Raw      []byte
}

// Bytes returns the file content, decoding Data only when Raw is not set.
func (p *InlinePart) Bytes() ([]byte, error) {
	if p.Raw != nil {
		return p.Raw, nil
	}
	return base64.StdEncoding.DecodeString(p.Data)
}

type FileEncoder interface {
	EncodeFile(r io.Reader, size int64) (string, error)
	EncodeAll(ctx context.Context, files []*multipart.FileHeader) ([]InlinePart, error)
}

type fileEncoder struct {
	chunkThreshold int64
	chunkSize      int
	concurrency    int
}

func NewFileEncoder(chunkThreshold int64, chunkSize, concurrency int) FileEncoder {
	if chunkSize <= 0 {
		chunkSize = 1024 * 1024
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &fileEncoder{
		chunkThreshold: chunkThreshold,
		chunkSize:      chunkSize,
		concurrency:    concurrency,
	}
}

// EncodeFile reads r to the end and returns its standard base64 encoding.
// Inputs larger than the chunk threshold are read chunk by chunk; the output
// does not depend on which path is taken.
func (e *fileEncoder) EncodeFile(r io.Reader, size int64) (string, error) {
	data, err := e.read(r, size)
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(data), nil
}

func (e *fileEncoder) read(r io.Reader, size int64) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if size > e.chunkThreshold {
		data, err = e.readChunked(r, size)
	} else {
		data, err = io.ReadAll(r)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read file")
	}
	return data, nil
}

func (e *fileEncoder) readChunked(r io.Reader, size int64) ([]byte, error) {
	var buf bytes.Buffer
	if size > 0 {
		buf.Grow(int(size))
	}

	chunk := make([]byte, e.chunkSize)
	for {
		n, err := io.ReadFull(r, chunk)
		buf.Write(chunk[:n])
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// EncodeAll encodes files concurrently. The returned parts are in the same
// order as files.
func (e *fileEncoder) EncodeAll(ctx context.Context, files []*multipart.FileHeader) ([]InlinePart, error) {
	parts := make([]InlinePart, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, fh := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			src, err := fh.Open()
			if err != nil {
				return errors.Wrapf(err, "failed to open uploaded file %s", fh.Filename)
			}
			defer src.Close()

			raw, err := e.read(src, fh.Size)
			if err != nil {
				return errors.Wrapf(err, "failed to encode %s", fh.Filename)
			}

			mimeType := fh.Header.Get("Content-Type")
			if mimeType == "" {
				mimeType = DefaultMIMEType
			}

			parts[i] = InlinePart{
				Data:     base64.StdEncoding.EncodeToString(raw),
				MIMEType: mimeType,
				Raw:      raw,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return parts, nil
}
