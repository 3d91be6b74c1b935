// Package smsenc computes SMS encoding, segmentation and cost for a
// message body. Encoding detection follows the GSM 03.38 default
// alphabet: any character outside it forces the whole message to UCS-2
// and the shorter Unicode segment capacities apply.
package smsenc

const (
	EncodingGSM7    = "GSM-7"
	EncodingUnicode = "Unicode"
)

// Segment capacities per GSM 03.38 / 3GPP TS 23.040. Multipart messages
// lose capacity to the UDH concatenation header.
const (
	gsm7SingleLimit       = 160
	gsm7MultipartLimit    = 153
	unicodeSingleLimit    = 70
	unicodeMultipartLimit = 67
)

const gsm7Basic = "@£$¥èéùìòÇ\nØø\rÅåΔ_ΦΓΛΩΠΨΣΘΞÆæßÉ !\"#¤%&'()*+,-./0123456789:;<=>?" +
	"¡ABCDEFGHIJKLMNOPQRSTUVWXYZÄÖÑÜ§¿abcdefghijklmnopqrstuvwxyzäöñüà"

// Characters reached through the escape table. Each costs two septets.
const gsm7Extended = "^{}\\[~]|€"

var (
	gsm7BasicSet    = runeSet(gsm7Basic)
	gsm7ExtendedSet = runeSet(gsm7Extended)
)

func runeSet(s string) map[rune]struct{} {
	set := make(map[rune]struct{}, len(s))
	for _, r := range s {
		set[r] = struct{}{}
	}
	return set
}

// Breakdown is the full cost accounting for one message body.
type Breakdown struct {
	Length      int      `json:"length"`
	Encoding    string   `json:"encoding"`
	Segments    int      `json:"segments"`
	UnitPrice   int64    `json:"unit_price"`
	TotalCost   int64    `json:"total_cost"`
	NonGSMChars []string `json:"non_gsm_chars,omitempty"`
}

// IsUnicode reports whether the message must be sent as UCS-2.
func (b Breakdown) IsUnicode() bool {
	return b.Encoding == EncodingUnicode
}

// DetectEncoding classifies text and returns the distinct characters,
// in first-appearance order, that push it out of the GSM-7 alphabet.
func DetectEncoding(text string) (encoding string, nonGSM []string) {
	seen := make(map[rune]struct{})

	for _, r := range text {
		if _, ok := gsm7BasicSet[r]; ok {
			continue
		}
		if _, ok := gsm7ExtendedSet[r]; ok {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		nonGSM = append(nonGSM, string(r))
	}

	if len(nonGSM) > 0 {
		return EncodingUnicode, nonGSM
	}
	return EncodingGSM7, nil
}

// Calculate prices text at unitPrice minor units per segment.
//
// Length counts septets for GSM-7 (extended-table characters count
// twice) and code points for Unicode. An empty message still occupies
// one segment.
func Calculate(text string, unitPrice int64) Breakdown {
	encoding, nonGSM := DetectEncoding(text)

	length := 0
	for _, r := range text {
		if _, ok := gsm7ExtendedSet[r]; ok && encoding == EncodingGSM7 {
			length += 2
			continue
		}
		length++
	}

	singleLimit, multipartLimit := gsm7SingleLimit, gsm7MultipartLimit
	if encoding == EncodingUnicode {
		singleLimit, multipartLimit = unicodeSingleLimit, unicodeMultipartLimit
	}

	segments := 1
	if length > singleLimit {
		segments = (length + multipartLimit - 1) / multipartLimit
	}

	return Breakdown{
		Length:      length,
		Encoding:    encoding,
		Segments:    segments,
		UnitPrice:   unitPrice,
		TotalCost:   int64(segments) * unitPrice,
		NonGSMChars: nonGSM,
	}
}
