// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package cmnd

import (
	"fmt"
	"sort"
	"time"
)

// Statistics tracks message statistics and error rates
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalMessages      uint64
	ValidMessages      uint64
	ChecksumErrors     uint64
	FramingErrors      uint64
	AnomalousMessages  uint64
	UnexpectedCookies  uint64
	UnknownServices    uint64
	UnknownMessages    uint64
	FailedRequests     uint64
	MalformedIEs       uint64
	UnexpectedPayloads uint64

	// Per-service message counts
	ServiceCounts map[ServiceID]uint64

	// Rates (calculated)
	MessageRate float64 // messages/sec
	ErrorRate   float64 // errors/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
		ServiceCounts:  make(map[ServiceID]uint64),
	}
}

// Update updates statistics based on a message and its errors.
// The message may be nil when decodeErr is set.
func (s *Statistics) Update(m *Message, decodeErr error, validationErrors []ValidationError) {
	s.TotalMessages++
	s.LastUpdateTime = time.Now()

	if decodeErr != nil {
		if IsFrameError(decodeErr, FrameErrChecksumInvalid) {
			s.ChecksumErrors++
		} else {
			// Framing errors (resync, undersize, oversize)
			s.FramingErrors++
		}
		return
	}

	if m != nil {
		s.ServiceCounts[m.ServiceID()]++
	}

	if len(validationErrors) > 0 {
		s.AnomalousMessages++
		for _, err := range validationErrors {
			switch err.Type {
			case AnomalyUnexpectedCookie:
				s.UnexpectedCookies++
			case AnomalyUnknownService:
				s.UnknownServices++
			case AnomalyUnknownMessage:
				s.UnknownMessages++
			case AnomalyRequestFailed:
				s.FailedRequests++
			case AnomalyMalformedIE:
				s.MalformedIEs++
			case AnomalyUnexpectedPayload:
				s.UnexpectedPayloads++
			}
		}
	} else {
		s.ValidMessages++
	}
}

// CalculateRates calculates message and error rates
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.MessageRate = float64(s.TotalMessages) / elapsed
		errorCount := s.ChecksumErrors + s.FramingErrors + s.AnomalousMessages
		s.ErrorRate = float64(errorCount) / elapsed
	}
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	// Calculate percentages
	var validPercent, checksumPercent, framingPercent, anomalousPercent float64
	if s.TotalMessages > 0 {
		validPercent = float64(s.ValidMessages) * 100.0 / float64(s.TotalMessages)
		checksumPercent = float64(s.ChecksumErrors) * 100.0 / float64(s.TotalMessages)
		framingPercent = float64(s.FramingErrors) * 100.0 / float64(s.TotalMessages)
		anomalousPercent = float64(s.AnomalousMessages) * 100.0 / float64(s.TotalMessages)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Total Messages:  %8d\n", s.TotalMessages)
	result += fmt.Sprintf("Valid Messages:  %8d (%.1f%%)\n", s.ValidMessages, validPercent)

	if s.ChecksumErrors > 0 {
		result += fmt.Sprintf("Checksum Errors: %8d (%.1f%%)\n", s.ChecksumErrors, checksumPercent)
	}
	if s.FramingErrors > 0 {
		result += fmt.Sprintf("Framing Errors:  %8d (%.1f%%)\n", s.FramingErrors, framingPercent)
	}
	if s.AnomalousMessages > 0 {
		result += fmt.Sprintf("Anomalous Msgs:  %8d (%.1f%%)\n", s.AnomalousMessages, anomalousPercent)
		if s.UnexpectedCookies > 0 {
			result += fmt.Sprintf("  Unexpected Cookie: %5d\n", s.UnexpectedCookies)
		}
		if s.UnknownServices > 0 {
			result += fmt.Sprintf("  Unknown Service:   %5d\n", s.UnknownServices)
		}
		if s.UnknownMessages > 0 {
			result += fmt.Sprintf("  Unknown Message:   %5d\n", s.UnknownMessages)
		}
		if s.FailedRequests > 0 {
			result += fmt.Sprintf("  Failed Request:    %5d\n", s.FailedRequests)
		}
		if s.MalformedIEs > 0 {
			result += fmt.Sprintf("  Malformed IEs:     %5d\n", s.MalformedIEs)
		}
		if s.UnexpectedPayloads > 0 {
			result += fmt.Sprintf("  Unexpected Body:   %5d\n", s.UnexpectedPayloads)
		}
	}

	if len(s.ServiceCounts) > 0 {
		result += "Per Service:\n"
		for _, service := range s.sortedServices() {
			result += fmt.Sprintf("  %-25s %8d\n", ServiceName(service), s.ServiceCounts[service])
		}
	}

	result += fmt.Sprintf("Message Rate:    %8.1f msgs/sec\n", s.MessageRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}

// sortedServices orders the seen services by traffic, busiest first
func (s *Statistics) sortedServices() []ServiceID {
	services := make([]ServiceID, 0, len(s.ServiceCounts))
	for service := range s.ServiceCounts {
		services = append(services, service)
	}
	sort.Slice(services, func(i, j int) bool {
		if s.ServiceCounts[services[i]] != s.ServiceCounts[services[j]] {
			return s.ServiceCounts[services[i]] > s.ServiceCounts[services[j]]
		}
		return services[i] < services[j]
	})
	return services
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	now := time.Now()
	s.StartTime = now
	s.LastUpdateTime = now
	s.TotalMessages = 0
	s.ValidMessages = 0
	s.ChecksumErrors = 0
	s.FramingErrors = 0
	s.AnomalousMessages = 0
	s.UnexpectedCookies = 0
	s.UnknownServices = 0
	s.UnknownMessages = 0
	s.FailedRequests = 0
	s.MalformedIEs = 0
	s.UnexpectedPayloads = 0
	s.ServiceCounts = make(map[ServiceID]uint64)
	s.MessageRate = 0
	s.ErrorRate = 0
}
