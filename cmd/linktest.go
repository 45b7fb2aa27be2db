// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/ulescope/pkg/cmnd"
)

var linkTestCmd = &cobra.Command{
	Use:   "linktest",
	Short: "Soak-test the link by decoding traffic for a while",
	Long: `Listen to the CMND stream for a fixed duration and judge the link quality.

The command decodes everything the board sends (keep-alives, indications)
and reports byte, frame and error counts. The test passes when the
connection stays up, at least one valid frame arrives and less than 10%
of frames are bad.

A board that is powered but silent fails this test; run it after "hello"
confirms the board is alive.

Exit codes:
  0 - Link is healthy
  1 - No traffic, too many errors, or the connection dropped
  2 - Connection error`,
	RunE: runLinkTest,
}

var linkTestDuration int

func init() {
	rootCmd.AddCommand(linkTestCmd)
	linkTestCmd.Flags().IntVar(&linkTestDuration, "duration", 30, "Test duration in seconds")
}

func runLinkTest(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("Ulescope - Link Soak Test\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Duration: %d seconds\n\n", linkTestDuration)

	readChan := make(chan []byte, 100)
	errChan := make(chan error, 1)

	go func() {
		buf := make([]byte, 256)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				errChan <- err
				return
			}
			if n > 0 {
				data := make([]byte, n)
				copy(data, buf[:n])
				readChan <- data
			}
		}
	}()

	framer := cmnd.NewFramer()
	startTime := time.Now()
	endTime := startTime.Add(time.Duration(linkTestDuration) * time.Second)
	bytesReceived := 0
	validFrames := 0
	badFrames := 0

	fmt.Printf("Listening...\n\n")

	verdict := func(result string) {
		fmt.Printf("\n--- Test Results ---\n")
		fmt.Printf("Duration: %v\n", time.Since(startTime).Round(time.Second))
		fmt.Printf("Bytes received: %d\n", bytesReceived)
		fmt.Printf("Valid frames: %d\n", validFrames)
		fmt.Printf("Bad frames: %d\n", badFrames)
		fmt.Printf("Result: %s\n", result)
	}

	for time.Now().Before(endTime) {
		select {
		case data := <-readChan:
			bytesReceived += len(data)
			for _, b := range data {
				message, decodeErr := framer.DecodeByte(b)
				if decodeErr != nil {
					// Garbage before first sync doesn't count against the link
					if validFrames > 0 || cmnd.IsFrameError(decodeErr, cmnd.FrameErrChecksumInvalid) {
						badFrames++
					}
					continue
				}
				if message != nil {
					validFrames++
				}
			}

		case err := <-errChan:
			fmt.Printf("\n[%s] Connection error: %v\n",
				time.Now().Format("15:04:05.000"), err)
			verdict("FAILED (connection error)")
			os.Exit(1)

		case <-time.After(1 * time.Second):
			remaining := time.Until(endTime).Seconds()
			fmt.Printf("[%s] %d bytes, %d frames, %d bad (%.0fs remaining)\n",
				time.Now().Format("15:04:05.000"), bytesReceived, validFrames, badFrames, remaining)
		}
	}

	switch {
	case validFrames == 0:
		verdict("FAILED (no valid frames)")
		os.Exit(1)
	case float64(badFrames) > 0.1*float64(validFrames+badFrames):
		verdict("FAILED (too many bad frames)")
		os.Exit(1)
	}

	verdict("PASSED (link healthy)")
	return nil
}
