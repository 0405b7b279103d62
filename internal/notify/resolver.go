package notify

import (
	"net/mail"
	"strings"
)

// RecipientResolver turns a free-form participants string into deliverable
// mail addresses.
type RecipientResolver interface {
	Resolve(participants string) []string
}

// DirectoryResolver resolves comma-separated participant names against a
// name-to-address directory. Entries that already look like mail addresses
// pass through as-is; names missing from the directory are dropped silently.
type DirectoryResolver struct {
	directory map[string]string
}

// NewDirectoryResolver creates a resolver over the given directory. Keys are
// matched case-insensitively.
func NewDirectoryResolver(directory map[string]string) *DirectoryResolver {
	normalized := make(map[string]string, len(directory))
	for name, addr := range directory {
		normalized[strings.ToLower(strings.TrimSpace(name))] = addr
	}
	return &DirectoryResolver{directory: normalized}
}

// Resolve splits participants on commas and maps each entry to an address,
// deduplicating the result while preserving order.
func (r *DirectoryResolver) Resolve(participants string) []string {
	seen := make(map[string]struct{})
	var addrs []string

	for _, part := range strings.Split(participants, ",") {
		entry := strings.TrimSpace(part)
		if entry == "" {
			continue
		}

		addr := r.lookup(entry)
		if addr == "" {
			continue
		}
		if _, dup := seen[addr]; dup {
			continue
		}
		seen[addr] = struct{}{}
		addrs = append(addrs, addr)
	}
	return addrs
}

func (r *DirectoryResolver) lookup(entry string) string {
	if addr, ok := r.directory[strings.ToLower(entry)]; ok {
		return addr
	}
	if parsed, err := mail.ParseAddress(entry); err == nil {
		return parsed.Address
	}
	return ""
}
