// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/spf13/cobra"

	"github.com/Thermoquad/ulescope/pkg/cmnd"
)

var (
	captureOutput string
	captureQuiet  bool
	replaySpeed   float64
)

// captureRecord is one read from the connection, as stored in a capture
// file. Capture files are a plain sequence of CBOR-encoded records.
type captureRecord struct {
	Time int64  `cbor:"1,keyasint"` // Unix nanoseconds
	Data []byte `cbor:"2,keyasint"`
}

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Record and replay CMND byte streams",
	Long: `Record the raw byte stream from a board into a capture file, and replay
capture files through the decoder later.

Captures are lossless: every byte read from the connection is stored with
its arrival time, including garbage and partial frames, so replay behaves
exactly like the live stream did. This makes captures useful bug reports
for framing problems.`,
}

var captureRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record the live byte stream to a file",
	Long: `Record the raw byte stream from the board until interrupted.

Decoded frames are printed while recording (suppress with --quiet).
Stop with Ctrl-C; the capture file is complete up to the last read.`,
	RunE: runCaptureRecord,
}

var captureReplayCmd = &cobra.Command{
	Use:   "replay <file>",
	Short: "Replay a capture file through the decoder",
	Long: `Replay a capture file through the decoder as if it were live traffic.

By default replay preserves the recorded timing (gaps are capped at five
seconds). --speed scales the timing: 2 replays twice as fast, 0 replays
as fast as possible.`,
	Args: cobra.ExactArgs(1),
	RunE: runCaptureReplay,
}

func init() {
	rootCmd.AddCommand(captureCmd)
	captureCmd.AddCommand(captureRecordCmd)
	captureCmd.AddCommand(captureReplayCmd)
	captureRecordCmd.Flags().StringVarP(&captureOutput, "output", "o", "", "Capture file to write (required)")
	captureRecordCmd.MarkFlagRequired("output")
	captureRecordCmd.Flags().BoolVar(&captureQuiet, "quiet", false, "Don't print decoded frames while recording")
	captureReplayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Timing scale factor (0 = no delays)")
	captureReplayCmd.Flags().BoolVar(&captureQuiet, "quiet", false, "Don't print decoded frames, only the summary")
}

func runCaptureRecord(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	out, err := os.Create(captureOutput)
	if err != nil {
		return fmt.Errorf("creating capture file: %w", err)
	}
	defer out.Close()

	fmt.Printf("Recording from %s to %s (Ctrl-C to stop)\n\n", connInfo, captureOutput)

	// Close the connection on Ctrl-C to unblock the read
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	enc := cbor.NewEncoder(out)
	framer := cmnd.NewFramer()
	start := time.Now()
	var totalBytes, totalFrames, totalErrors int

	buf := make([]byte, 1024)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrConnectionClosed) {
				break
			}
			return fmt.Errorf("read failed: %w", err)
		}
		if n == 0 {
			continue
		}

		rec := captureRecord{Time: time.Now().UnixNano(), Data: buf[:n]}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("writing capture file: %w", err)
		}
		totalBytes += n

		for i := 0; i < n; i++ {
			message, decodeErr := framer.DecodeByte(buf[i])
			if decodeErr != nil {
				totalErrors++
				continue
			}
			if message != nil {
				totalFrames++
				if !captureQuiet {
					fmt.Println(cmnd.FormatMessage(message))
				}
			}
		}
	}

	fmt.Printf("\nCaptured %d bytes, %d frames, %d decode errors in %v\n",
		totalBytes, totalFrames, totalErrors, time.Since(start).Round(time.Second))
	fmt.Printf("Capture written to %s\n", captureOutput)
	return nil
}

func runCaptureReplay(cmd *cobra.Command, args []string) error {
	in, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening capture file: %w", err)
	}
	defer in.Close()

	dec := cbor.NewDecoder(in)
	framer := cmnd.NewFramer()
	stats := cmnd.NewStatistics()

	var prev time.Time
	for {
		var rec captureRecord
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("reading capture file: %w", err)
		}

		recTime := time.Unix(0, rec.Time)
		if replaySpeed > 0 && !prev.IsZero() {
			gap := time.Duration(float64(recTime.Sub(prev)) / replaySpeed)
			if gap > 5*time.Second {
				gap = 5 * time.Second
			}
			if gap > 0 {
				time.Sleep(gap)
			}
		}
		prev = recTime

		for _, b := range rec.Data {
			message, decodeErr := framer.DecodeByte(b)
			if decodeErr != nil {
				stats.Update(nil, decodeErr, nil)
				if !captureQuiet {
					fmt.Printf("FRAME ERROR: %v\n", decodeErr)
				}
				continue
			}
			if message == nil {
				continue
			}

			validationErrors := cmnd.ValidateMessage(message)
			stats.Update(message, nil, validationErrors)
			if !captureQuiet {
				fmt.Println(cmnd.FormatMessage(message))
				for _, v := range validationErrors {
					fmt.Printf("  ANOMALY: %s\n", v.Message)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", stats.String())
	return nil
}
