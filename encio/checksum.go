package encio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
)

// blockHeader is the length and sequence number that follow the hash in every block.
const blockHeader = 6

// NewChecksumWriter returns a ChecksumWriter that hashes with hasher and writes to w.
// A nil hasher selects CRC-32 (IEEE). The ChecksumWriter and ChecksumReader must share the same hasher.
func NewChecksumWriter(w io.Writer, hasher hash.Hash) *ChecksumWriter {
	if hasher == nil {
		hasher = crc32.NewIEEE()
	}

	return &ChecksumWriter{
		w:      w,
		hasher: hasher,
	}
}

// ChecksumWriter frames each Write as one block carrying a checksum and a sequence number,
// allowing a ChecksumReader to discern if data is intact and in order.
type ChecksumWriter struct {
	w      io.Writer
	hasher hash.Hash
	buff   []byte
	count  uint16
}

// Write implements io.Writer.
// The block is written to the underlying writer with a single call.
func (c *ChecksumWriter) Write(buff []byte) (int, error) {
	if len(buff) == 0 {
		return 0, nil
	}

	hs := c.hasher.Size()

	c.buff = grow(c.buff[:0], hs+blockHeader+len(buff))
	binary.LittleEndian.PutUint32(c.buff[hs:], uint32(len(buff)))
	binary.LittleEndian.PutUint16(c.buff[hs+4:], c.count)
	copy(c.buff[hs+blockHeader:], buff)

	c.hasher.Reset()
	if _, err := c.hasher.Write(c.buff[hs:]); err != nil {
		return 0, err
	}
	copy(c.buff, c.hasher.Sum(make([]byte, 0, hs)))

	c.count++

	if err := Write(c.buff, c.w); err != nil {
		return 0, err
	}
	return len(buff), nil
}

// NewChecksumReader returns a ChecksumReader that hashes with hasher and reads from r.
func NewChecksumReader(r io.Reader, hasher hash.Hash) *ChecksumReader {
	if hasher == nil {
		hasher = crc32.NewIEEE()
	}

	return &ChecksumReader{
		r:      r,
		hasher: hasher,
	}
}

// ChecksumReader reads blocks written by a ChecksumWriter.
type ChecksumReader struct {
	r      io.Reader
	hasher hash.Hash
	buff   []byte
	off    int
	count  int
}

// reset drops the current block and stops checking order until the next intact block arrives.
func (c *ChecksumReader) reset() {
	c.buff = c.buff[:0]
	c.off = 0
	c.count = -1
}

// Read implements io.Reader.
// If received data is out of order, or has been corrupted as discerned by the hasher,
// Read returns a wrapped ErrMalformed.
// After an error, the next intact block is accepted whatever its sequence number.
// io.EOF is returned untouched when the underlying reader ends cleanly between blocks.
func (c *ChecksumReader) Read(buff []byte) (int, error) {
	if c.off < len(c.buff) {
		n := copy(buff, c.buff[c.off:])
		c.off += n
		return n, nil
	}

	if len(buff) == 0 {
		return 0, nil
	}

	hs := c.hasher.Size()
	c.buff = grow(c.buff[:0], hs+blockHeader)

	if err := Read(c.buff, c.r); err != nil {
		c.reset()
		return 0, err
	}

	l := uint64(binary.LittleEndian.Uint32(c.buff[hs:]))
	if l > TooBig {
		c.reset()
		return 0, NewIOError(ErrMalformed, c.r, fmt.Sprintf("received block size of %v is too big", l), 0)
	}

	c.buff = grow(c.buff, hs+blockHeader+int(l))
	if err := Read(c.buff[hs+blockHeader:], c.r); err != nil {
		c.reset()
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return 0, NewIOError(
				ErrMalformed,
				c.r,
				fmt.Sprintf("header says the block is %v bytes big, but got %q before reading it all", l, err),
				0,
			)
		}
		return 0, err
	}

	c.hasher.Reset()
	if _, err := c.hasher.Write(c.buff[hs:]); err != nil {
		c.reset()
		return 0, err
	}

	sum := c.hasher.Sum(make([]byte, 0, hs))
	for i := range sum {
		if c.buff[i] != sum[i] {
			c.reset()
			return 0, NewIOError(ErrMalformed, c.r, "checksums do not match", 0)
		}
	}

	count := int(binary.LittleEndian.Uint16(c.buff[hs+4:]))
	if c.count >= 0 && count != c.count {
		last := c.count
		c.reset()
		return 0, NewIOError(
			ErrMalformed,
			c.r,
			fmt.Sprintf("data out of order. Expected block number %v, but received %v", last, count),
			0,
		)
	}
	c.count = (count + 1) & 0xffff

	c.off = hs + blockHeader
	n := copy(buff, c.buff[c.off:])
	c.off += n
	return n, nil
}

// grow extends buff to length n, reusing its capacity when possible.
func grow(buff []byte, n int) []byte {
	if cap(buff) >= n {
		return buff[:n]
	}
	nb := make([]byte, n, n*2)
	copy(nb, buff)
	return nb
}
