package distribution

import (
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/hashicorp/yamux"

	"github.com/pipforge/pipforge/pkg/encoding"
	"github.com/pipforge/pipforge/pkg/wireproto"
)

// conn is the control connection between an orchestrator and a single
// worker: one yamux-multiplexed stream carrying a sequence of
// ControlMessage frames in each direction. It is deliberately a single
// stream rather than one stream per RPC (as pkg/rpc's generic request
// dispatch does) because ExecutePip dispatches must be able to run ahead
// of PipResult replies on the same logical channel.
type conn struct {
	sendLock sync.Mutex
	closer   io.Closer
	encoder  *encoding.ProtobufEncoder
	decoder  *encoding.ProtobufDecoder
}

func newConn(stream io.ReadWriteCloser) *conn {
	return &conn{
		closer:  stream,
		encoder: encoding.NewProtobufEncoder(stream),
		decoder: encoding.NewProtobufDecoder(stream),
	}
}

func (c *conn) send(message *wireproto.ControlMessage) error {
	c.sendLock.Lock()
	defer c.sendLock.Unlock()
	if err := c.encoder.Encode(message); err != nil {
		return fmt.Errorf("unable to transmit control message: %w", err)
	}
	return nil
}

func (c *conn) receive() (*wireproto.ControlMessage, error) {
	message := &wireproto.ControlMessage{}
	if err := c.decoder.Decode(message); err != nil {
		return nil, err
	}
	return message, nil
}

func (c *conn) Close() error {
	return c.closer.Close()
}

// dialWorkerSession opens a yamux client session over the given raw
// connection and returns a conn bound to its single control stream. Grounded
// on pkg/rpc.NewClient's yamux.Client wrapping.
func dialWorkerSession(raw io.ReadWriteCloser) (*conn, *yamux.Session, error) {
	session, err := yamux.Client(raw, yamux.DefaultConfig())
	if err != nil {
		raw.Close()
		return nil, nil, fmt.Errorf("unable to create multiplexer: %w", err)
	}
	stream, err := session.Open()
	if err != nil {
		session.Close()
		return nil, nil, fmt.Errorf("unable to open control stream: %w", err)
	}
	return newConn(stream), session, nil
}

// acceptWorkerSession accepts a single yamux server session over the given
// raw connection and returns a conn bound to its single control stream.
// Grounded on pkg/rpc.Server.multiplexAndServe's yamux.Server wrapping.
func acceptWorkerSession(raw net.Conn) (*conn, *yamux.Session, error) {
	session, err := yamux.Server(raw, yamux.DefaultConfig())
	if err != nil {
		raw.Close()
		return nil, nil, fmt.Errorf("unable to create multiplexer: %w", err)
	}
	stream, err := session.AcceptStream()
	if err != nil {
		session.Close()
		return nil, nil, fmt.Errorf("unable to accept control stream: %w", err)
	}
	return newConn(stream), session, nil
}
