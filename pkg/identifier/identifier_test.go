package identifier

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestFormat(t *testing.T) {
	assert.Regexp(t, regexp.MustCompile(`^REQ-\d{13}-\d{3}$`), Request())
}

func TestTransactionFormat(t *testing.T) {
	assert.Regexp(t, regexp.MustCompile(`^TXN-\d{13}-\d{4}$`), Transaction())
}

func TestReceiptFormat(t *testing.T) {
	assert.Regexp(t, regexp.MustCompile(`^RCP-\d{13}-\d{3}$`), Receipt())
}
