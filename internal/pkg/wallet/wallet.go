package wallet

// AddressLength is the fixed length of a ledger account address.
const AddressLength = 56

// IsValidAddress reports whether s is a well-formed ledger account address:
// exactly 56 characters, starting with 'G', the remainder drawn from the
// Base32 alphabet A-Z / 2-7. The input is matched as-is, without trimming.
func IsValidAddress(s string) bool {
	if len(s) != AddressLength || s[0] != 'G' {
		return false
	}
	for i := 1; i < AddressLength; i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < '2' || c > '7') {
			return false
		}
	}
	return true
}
