package bench

import (
	"strconv"
	"time"
)

// Record is the outcome of one benchmark run.
type Record struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	File      string    `json:"file"`
	Bytes     int       `json:"bytes"`
	Mode      string    `json:"mode"`
	Threads   int       `json:"threads"`

	SerialEncrypt   float64 `json:"serial_encrypt_time"`
	SerialDecrypt   float64 `json:"serial_decrypt_time"`
	SerialTotal     float64 `json:"serial_total"`
	ParallelEncrypt float64 `json:"parallel_encrypt_time"`
	ParallelDecrypt float64 `json:"parallel_decrypt_time"`
	ParallelTotal   float64 `json:"parallel_time"`
	Speedup         float64 `json:"speedup"`
	CPUPercent      float64 `json:"cpu_avg"`

	// OpenSSL is the openssl CLI encryption time, when requested and available.
	OpenSSL float64 `json:"openssl_time,omitempty"`
}

// csvHeader lists the CSV columns in the order written by row.
//
//nolint:gochecknoglobals
var csvHeader = []string{
	"id", "timestamp", "file", "bytes", "mode", "threads",
	"serial_encrypt_time", "serial_decrypt_time", "serial_total",
	"parallel_encrypt_time", "parallel_decrypt_time", "parallel_time",
	"speedup", "cpu_avg", "openssl_time",
}

func (r Record) row() []string {
	return []string{
		r.ID,
		r.Timestamp.Format(time.RFC3339),
		r.File,
		strconv.Itoa(r.Bytes),
		r.Mode,
		strconv.Itoa(r.Threads),
		seconds(r.SerialEncrypt),
		seconds(r.SerialDecrypt),
		seconds(r.SerialTotal),
		seconds(r.ParallelEncrypt),
		seconds(r.ParallelDecrypt),
		seconds(r.ParallelTotal),
		strconv.FormatFloat(r.Speedup, 'f', 3, 64),
		strconv.FormatFloat(r.CPUPercent, 'f', 1, 64),
		seconds(r.OpenSSL),
	}
}

func seconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
