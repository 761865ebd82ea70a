// Command newtond hosts a Newton interpreter behind a TCP listener,
// framing incoming bytes into the wire protocol's 16-bit words and
// driving a single runtime.Engine over them.
package main

import (
	"net"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/prismvm/newton/internal/runtime"
	"github.com/prismvm/newton/internal/transport"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

func newRootCommand() *cobra.Command {
	var addr string
	var bufferSize uint8
	var queueDepth int

	cmd := &cobra.Command{
		Use:   "newtond",
		Short: "Run a Newton interpreter host over TCP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(addr, bufferSize, queueDepth)
		},
	}

	var flags *pflag.FlagSet = cmd.Flags()
	flags.StringVar(&addr, "addr", ":9999", "TCP address to listen on")
	flags.Uint8Var(&bufferSize, "buffer-size", 64, "pixel framebuffer length N (1-255)")
	flags.IntVar(&queueDepth, "queue-depth", 256, "bounded instruction channel depth")

	return cmd
}

func serve(addr string, bufferSize uint8, queueDepth int) error {
	if bufferSize == 0 {
		return errInvalidBufferSize
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	defer listener.Close()

	var cancel atomic.Bool
	words := make(chan uint16, queueDepth)
	engine := runtime.NewEngine(bufferSize, runtime.LogSink{}, &cancel)

	group := new(errgroup.Group)
	group.Go(func() error {
		return engine.Run(words)
	})
	group.Go(func() error {
		return acceptLoop(listener, words, &cancel)
	})

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		logger.Info("shutting down")
		cancel.Store(true)
		listener.Close()
	}()

	logger.Info("listening", "addr", addr, "bufferSize", bufferSize)
	return group.Wait()
}

func acceptLoop(listener net.Listener, words chan<- uint16, cancel *atomic.Bool) error {
	for {
		if cancel.Load() {
			return nil
		}
		conn, err := listener.Accept()
		if err != nil {
			if cancel.Load() {
				return nil
			}
			return err
		}
		connID := uuid.NewString()
		logger.Info("connection accepted", "id", connID, "remote", conn.RemoteAddr())
		go func() {
			defer conn.Close()
			reader := transport.NewFrameReader(conn, cancel)
			if err := reader.Frames(words); err != nil {
				logger.Error("connection framing error", "id", connID, "err", err)
			}
			logger.Info("connection closed", "id", connID)
		}()
	}
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logger.Error("fatal", "err", err)
		os.Exit(1)
	}
}
