package protocol

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"io"
)

// cfb8Stream is AES in CFB8 mode (8-bit feedback). Both directions use the
// block cipher's Encrypt; they differ in which byte is shifted into the
// feedback register, and that is always the ciphertext byte.
type cfb8Stream struct {
	block   cipher.Block
	iv      [aes.BlockSize]byte
	decrypt bool
}

func newCFB8(block cipher.Block, iv []byte, decrypt bool) *cfb8Stream {
	s := &cfb8Stream{block: block, decrypt: decrypt}
	copy(s.iv[:], iv)
	return s
}

func (s *cfb8Stream) XORKeyStream(dst, src []byte) {
	var tmp [aes.BlockSize]byte
	for i, b := range src {
		s.block.Encrypt(tmp[:], s.iv[:])
		out := b ^ tmp[0]
		copy(s.iv[:], s.iv[1:])
		if s.decrypt {
			s.iv[aes.BlockSize-1] = b
		} else {
			s.iv[aes.BlockSize-1] = out
		}
		dst[i] = out
	}
}

// EncryptedStream wraps the byte stream under the frames once a connection
// has switched to encryption. The shared secret is both key and IV, with one
// CFB8 stream per direction.
type EncryptedStream struct {
	rw  io.ReadWriter
	enc cipher.Stream
	dec cipher.Stream
}

func NewEncryptedStream(rw io.ReadWriter, sharedSecret []byte) (*EncryptedStream, error) {
	if len(sharedSecret) != aes.BlockSize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrBadSharedSecret, len(sharedSecret))
	}
	block, err := aes.NewCipher(sharedSecret)
	if err != nil {
		return nil, fmt.Errorf("create AES cipher: %w", err)
	}
	return &EncryptedStream{
		rw:  rw,
		enc: newCFB8(block, sharedSecret, false),
		dec: newCFB8(block, sharedSecret, true),
	}, nil
}

func (e *EncryptedStream) Read(p []byte) (int, error) {
	n, err := e.rw.Read(p)
	if n > 0 {
		e.dec.XORKeyStream(p[:n], p[:n])
	}
	return n, err
}

func (e *EncryptedStream) Write(p []byte) (int, error) {
	encrypted := make([]byte, len(p))
	e.enc.XORKeyStream(encrypted, p)
	return e.rw.Write(encrypted)
}
