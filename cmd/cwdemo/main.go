// Command cwdemo round-trips handshake and record frames in a loop and can
// write a heap profile, for checking that fixed-layout encoding stays cheap.
package main

import (
	"flag"
	"log/slog"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/rawbytedev/cstring"
	"github.com/rawbytedev/cstring/pkg/compactwire"
)

type Sample struct {
	ID     uint32
	Name   cstring.String[[16]byte]
	Label  cstring.WString[[8]rune]
	Value  float64
	Active bool
}

func main() {
	iterations := flag.Int("n", 10000, "round trips to run")
	compress := flag.Bool("zstd", false, "compress data frame payloads")
	memprofile := flag.String("memprofile", "", "write a heap profile to this file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(logger, *iterations, *compress, *memprofile); err != nil {
		logger.Error("cwdemo failed", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, iterations int, compress bool, memprofile string) error {
	if memprofile != "" {
		runtime.MemProfileRate = 1
	}
	opts := compactwire.Options{Compress: compress, MaxFrame: 64 << 10}
	enc, err := compactwire.NewEncoder(opts)
	if err != nil {
		return err
	}
	defer enc.Close()
	dec, err := compactwire.NewDecoder(opts)
	if err != nil {
		return err
	}
	defer dec.Close()

	hs := compactwire.Handshake{VersionMask: 0x0001, MTU: 1500, TimeoutMS: 3000}
	if err := hs.Peer.Set("cwdemo"); err != nil {
		return err
	}
	if err := hs.AlgCodes.Assign(cstring.FromList[byte, [16]byte](1, 4)); err != nil {
		return err
	}
	frame, err := enc.EncodeHandshake(hs)
	if err != nil {
		return err
	}
	peer, err := dec.DecodeHandshake(frame)
	if err != nil {
		return err
	}
	logger.Info("handshake", "peer", peer.Peer.String(), "mtu", peer.MTU, "bytes", len(frame))

	samples := make([]any, 0, 4)
	for i, name := range []string{"alpha", "beta", "gamma", "delta"} {
		s := &Sample{ID: uint32(i), Value: float64(i) * 1.5, Active: i%2 == 0}
		if err := s.Name.Set(name); err != nil {
			return err
		}
		if err := s.Label.Set("é" + name[:1]); err != nil {
			return err
		}
		samples = append(samples, s)
	}

	var total int
	for i := 0; i < iterations; i++ {
		frame, err := enc.EncodeRecords(samples...)
		if err != nil {
			return err
		}
		payload, offsets, _, err := dec.DecodeDataFrame(frame)
		if err != nil {
			return err
		}
		var out Sample
		for j := range offsets {
			if err := dec.DecodeRecord(payload, offsets, j, &out); err != nil {
				return err
			}
		}
		total += len(frame)
	}
	logger.Info("records", "iterations", iterations, "bytes", total, "zstd", compress)

	if memprofile == "" {
		return nil
	}
	f, err := os.Create(memprofile)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := pprof.WriteHeapProfile(f); err != nil {
		return err
	}
	logger.Info("heap profile written", "path", memprofile)
	return nil
}
