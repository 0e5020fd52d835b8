package service

// EmailPseudonymizer maps an email address to a stable, non-reversible digest.
// Equal addresses after normalization map to equal digests.
type EmailPseudonymizer interface {
	Digest(email string) string
}
