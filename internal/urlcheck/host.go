package urlcheck

import (
	"net/netip"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/idna"
)

// domainProfile maps hostnames the way browsers do: UTS #46 non-transitional
// processing without the STD3 and hyphen restrictions.
var domainProfile = idna.New(
	idna.MapForLookup(),
	idna.Transitional(false),
	idna.StrictDomainName(false),
	idna.CheckHyphens(false),
)

// forbiddenDomain lists ASCII code points that may not appear in a domain
// after IDNA mapping, in addition to C0 controls and DEL.
const forbiddenDomain = " #%/:<>?@[\\]^|"

// parseHost validates the host portion of an authority and returns its
// serialized form. A zero Kind means success.
func parseHost(s string, special bool) (string, Kind) {
	if strings.HasPrefix(s, "[") {
		if !strings.HasSuffix(s, "]") {
			return "", InvalidIPv6
		}
		addr, err := netip.ParseAddr(s[1 : len(s)-1])
		if err != nil || !addr.Is6() || addr.Zone() != "" {
			return "", InvalidIPv6
		}
		return "[" + addr.String() + "]", 0
	}

	if !special || s == "" {
		return s, 0
	}

	decoded, err := url.PathUnescape(s)
	if err != nil {
		return "", Other
	}
	ascii, err := domainProfile.ToASCII(decoded)
	if err != nil || ascii == "" {
		return "", Other
	}
	for i := 0; i < len(ascii); i++ {
		c := ascii[i]
		if c <= 0x1f || c == 0x7f || strings.IndexByte(forbiddenDomain, c) >= 0 {
			return "", Other
		}
	}

	if endsInNumber(ascii) {
		addr, ok := parseIPv4(ascii)
		if !ok {
			return "", InvalidIPv4
		}
		return addr, 0
	}
	return ascii, 0
}

// endsInNumber reports whether the last non-empty label of host is numeric,
// which makes the whole host an IPv4 candidate.
func endsInNumber(host string) bool {
	labels := strings.Split(host, ".")
	if labels[len(labels)-1] == "" {
		if len(labels) == 1 {
			return false
		}
		labels = labels[:len(labels)-1]
	}
	last := labels[len(labels)-1]
	if last != "" && strings.Trim(last, "0123456789") == "" {
		return true
	}
	_, ok := parseIPv4Number(last)
	return ok
}

// parseIPv4 accepts one to four dot-separated parts in decimal, octal
// (leading 0) or hex (0x prefix) and returns the dotted-quad form.
func parseIPv4(host string) (string, bool) {
	parts := strings.Split(host, ".")
	if parts[len(parts)-1] == "" && len(parts) > 1 {
		parts = parts[:len(parts)-1]
	}
	if len(parts) > 4 {
		return "", false
	}

	nums := make([]uint64, len(parts))
	for i, p := range parts {
		n, ok := parseIPv4Number(p)
		if !ok {
			return "", false
		}
		nums[i] = n
	}

	for _, n := range nums[:len(nums)-1] {
		if n > 255 {
			return "", false
		}
	}
	last := nums[len(nums)-1]
	if last >= 1<<(8*(5-len(nums))) {
		return "", false
	}

	addr := last
	for i, n := range nums[:len(nums)-1] {
		addr += n << (8 * (3 - i))
	}
	return netip.AddrFrom4([4]byte{
		byte(addr >> 24), byte(addr >> 16), byte(addr >> 8), byte(addr),
	}).String(), true
}

func parseIPv4Number(s string) (uint64, bool) {
	if s == "" {
		return 0, false
	}
	base := 10
	switch {
	case len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X"):
		s, base = s[2:], 16
		if s == "" {
			return 0, true
		}
	case len(s) >= 2 && s[0] == '0':
		s, base = s[1:], 8
	}
	n, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		// Out-of-range numbers are still numbers; the caller rejects them.
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return 1 << 40, true
		}
		return 0, false
	}
	return n, true
}
