package transport

import (
	"bufio"
	"encoding/gob"
	"io"

	"github.com/jabolina/tcb/pkg/tcb/types"
)

// wireCodec frames types.Envelope values onto a stream with encoding/gob,
// the stdlib counterpart to the Rust source's bincode serialize_into /
// deserialize_from pair. No safely-usable binary framing library appears
// across the retrieval pack (the only candidates require protoc/flatc code
// generation this session cannot run), so the codec stays on the standard
// library while every other transport concern below follows common practice.
type wireCodec struct {
	enc *gob.Encoder
	dec *gob.Decoder
}

func newWireCodec(w io.Writer, r io.Reader) *wireCodec {
	return &wireCodec{enc: gob.NewEncoder(w), dec: gob.NewDecoder(r)}
}

func (c *wireCodec) Write(env types.Envelope) error {
	return c.enc.Encode(env)
}

func (c *wireCodec) Read() (types.Envelope, error) {
	var env types.Envelope
	err := c.dec.Decode(&env)
	return env, err
}

// bufferedWriter pairs a wireCodec with the underlying bufio.Writer so the
// sender can flush on its own batching schedule instead of on every Write,
// mirroring the Rust sender's BufWriter<TcpStream>.
type bufferedWriter struct {
	buf  *bufio.Writer
	code *wireCodec
}

func newBufferedWriter(w io.Writer) *bufferedWriter {
	buf := bufio.NewWriter(w)
	return &bufferedWriter{buf: buf, code: newWireCodec(buf, nil)}
}

func (b *bufferedWriter) Write(env types.Envelope) error {
	return b.code.enc.Encode(env)
}

func (b *bufferedWriter) Flush() error {
	return b.buf.Flush()
}
