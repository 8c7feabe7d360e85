package csvexport

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"tallyflow/internal/domain"
)

// HashFile returns the hex SHA-256 of a file's content. Artifact hashes are
// stable across re-runs of the same input.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("csvexport.HashFile: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("csvexport.HashFile: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// RatePct renders a GST rate decimal (0.18) as an integer-ish percent
// string ("18"); fractional rates keep their fraction ("2.5").
func RatePct(rate decimal.Decimal) string {
	s := rate.Mul(decimal.NewFromInt(100)).String()
	if strings.Contains(s, ".") {
		s = strings.TrimSuffix(strings.TrimRight(s, "0"), ".")
	}
	return s
}

// BatchFileName builds the deterministic batch artifact name:
// {channel}_{gstin}_{month}_{rate_pct}pct_batch.csv
func BatchFileName(channel domain.Channel, gstin, month string, rate decimal.Decimal) string {
	return fmt.Sprintf("%s_%s_%s_%spct_batch.csv", channel, gstin, month, RatePct(rate))
}

// VoucherFileName builds the deterministic sales workbook name:
// {channel}_{gstin}_{month}_{rate_pct}pct_x2beta.xlsx
func VoucherFileName(channel domain.Channel, gstin, month string, rate decimal.Decimal) string {
	return fmt.Sprintf("%s_%s_%s_%spct_x2beta.xlsx", channel, gstin, month, RatePct(rate))
}

// ExpenseFileName builds the deterministic expense workbook name.
func ExpenseFileName(channel domain.Channel, gstin, month string) string {
	return fmt.Sprintf("%s_%s_%s_expense_x2beta.xlsx", channel, gstin, month)
}

// WriteTempArtifact writes an artifact via the given writer function into
// the directory, returning the file path and its content hash.
func WriteTempArtifact(dir, name string, write func(io.Writer) error) (path, hash string, err error) {
	path = filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", "", fmt.Errorf("csvexport.WriteTempArtifact: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return "", "", fmt.Errorf("csvexport.WriteTempArtifact %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", "", fmt.Errorf("csvexport.WriteTempArtifact: %w", err)
	}
	hash, err = HashFile(path)
	if err != nil {
		return "", "", err
	}
	return path, hash, nil
}
