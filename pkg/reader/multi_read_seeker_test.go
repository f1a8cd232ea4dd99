package reader

import (
	"bytes"
	"io"
	"math/rand"
	"testing"
)

func TestMultiReadSeekerRandomSeek(t *testing.T) {
	testReadSeeker(t, func(data []byte) io.ReadSeeker {
		n := len(data)

		var (
			readers []io.ReadSeeker
			sizes   []int64
		)

		size := 0
		for size < n {
			sz := min(
				rand.Intn(1024)+1,
				n-size,
			)

			chunk := data[size : size+sz]
			readers = append(readers, bytes.NewReader(chunk))

			sizes = append(sizes, int64(sz))
			size += sz
		}
		return NewMultiReadSeeker(readers, sizes)
	})
}

func TestBufferedSeeker(t *testing.T) {
	testReadSeeker(t, func(data []byte) io.ReadSeeker {
		return NewBufferedReadSeeker(bytes.NewReader(data), 4096)
	})
}

func TestMultiReaderAtSharedParts(t *testing.T) {
	data := GenerateRandomBuffer(3000)
	parts := []io.ReaderAt{
		bytes.NewReader(data[:1000]),
		bytes.NewReader(data[1000:1024]),
		bytes.NewReader(data[1024:]),
	}
	sizes := []int64{1000, 24, 1976}

	a := NewMultiReaderAt(parts, sizes)
	b := NewMultiReaderAt(parts, sizes)
	if a.Size() != 3000 {
		t.Fatalf("unexpected size %d", a.Size())
	}

	// the two seekers keep independent positions over the same parts
	if _, err := a.Seek(990, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	all, err := io.ReadAll(b)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(all, data) {
		t.Fatal("concatenation mismatch")
	}

	buf := make([]byte, 40)
	if _, err := io.ReadFull(a, buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf, data[990:1030]) {
		t.Fatal("read across part boundary mismatch")
	}

	if sizes[1] != 24 {
		t.Fatal("sizes must not be modified")
	}
}

func TestBufferedSeekerSeekEnd(t *testing.T) {
	data := GenerateRandomBuffer(1000)
	r := NewBufferedReadSeeker(bytes.NewReader(data), 64)

	pos, err := r.Seek(-10, io.SeekEnd)
	if err != nil {
		t.Fatal(err)
	}
	if pos != 990 {
		t.Fatalf("unexpected position %d", pos)
	}

	rest, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(rest, data[990:]) {
		t.Fatal("tail mismatch")
	}
}
