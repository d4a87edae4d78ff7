package dataset

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// IdempotentID derives a record identifier from all of its attributes,
// so importing the same file twice keeps the store unchanged.
func IdempotentID(rec RunRecord) string {
	sum := sha1.New()
	seed := "base"
	if rec.Seed != nil {
		seed = fmt.Sprintf("%d", *rec.Seed)
	}
	_, err := fmt.Fprintf(
		sum, "%s#%s#%s#%f#%f#%f#%f#%f#%f",
		rec.Size, rec.Quant, seed,
		rec.Accuracy, rec.F1, rec.Throughput, rec.Latency,
		rec.GPUPeakMemMB, rec.CPURSSMB,
	)
	if err != nil {
		panic("problem generating hash")
	}
	return hex.EncodeToString(sum.Sum(nil))
}
