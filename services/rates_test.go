package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const keyRateResponse = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://www.w3.org/2003/05/soap-envelope">
	<soap:Body>
		<KeyRateResponse xmlns="http://web.cbr.ru/">
			<KeyRateResult>
				<diffgram>
					<KeyRate>
						<KR>
							<DT>2025-08-25T00:00:00+03:00</DT>
							<Rate>16.00</Rate>
						</KR>
						<KR>
							<DT>2025-08-24T00:00:00+03:00</DT>
							<Rate>15.50</Rate>
						</KR>
					</KeyRate>
				</diffgram>
			</KeyRateResult>
		</KeyRateResponse>
	</soap:Body>
</soap:Envelope>`

func TestParseKeyRate(t *testing.T) {
	rate, err := parseKeyRate([]byte(keyRateResponse))
	require.NoError(t, err)
	// first KR entry is the latest published value
	assert.True(t, rate.Equal(decimal.RequireFromString("16.00")), "got %s", rate)
}

func TestParseKeyRateErrors(t *testing.T) {
	_, err := parseKeyRate([]byte("not xml at all <"))
	assert.ErrorContains(t, err, "parse XML")

	_, err = parseKeyRate([]byte(`<?xml version="1.0"?><Envelope><Body/></Envelope>`))
	assert.ErrorContains(t, err, "no rate data")

	noRate := `<?xml version="1.0"?>
<Envelope><Body><diffgram><KeyRate><KR><DT>2025-08-25</DT></KR></KeyRate></diffgram></Body></Envelope>`
	_, err = parseKeyRate([]byte(noRate))
	assert.ErrorContains(t, err, "rate element not found")

	badRate := `<?xml version="1.0"?>
<Envelope><Body><diffgram><KeyRate><KR><Rate>n/a</Rate></KR></KeyRate></diffgram></Body></Envelope>`
	_, err = parseKeyRate([]byte(badRate))
	assert.ErrorContains(t, err, "failed to parse rate")
}
