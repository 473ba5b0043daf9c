package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOwnsPostRequiresBothFields(t *testing.T) {
	p := Principal{AccountID: "acct-1", IPAddress: "203.0.113.10"}

	assert.True(t, p.OwnsPost(&Post{AuthorIP: "203.0.113.10", AuthorID: "acct-1"}))
	assert.False(t, p.OwnsPost(&Post{AuthorIP: "203.0.113.10", AuthorID: "acct-2"}))
	assert.False(t, p.OwnsPost(&Post{AuthorIP: "203.0.113.99", AuthorID: "acct-1"}))
}

func TestOwnsPostNeverMatchesLegacy(t *testing.T) {
	p := Principal{AccountID: "acct-1", IPAddress: LegacyAuthor}
	assert.False(t, p.OwnsPost(&Post{AuthorIP: LegacyAuthor, AuthorID: "acct-1"}))
}

func TestOwnsCommentMatchesAddressOnly(t *testing.T) {
	p := Principal{AccountID: "acct-1", IPAddress: "203.0.113.10"}

	assert.True(t, p.OwnsComment(&Comment{AuthorIP: "203.0.113.10", AuthorID: "someone-else"}))
	assert.False(t, p.OwnsComment(&Comment{AuthorIP: "203.0.113.99"}))
	assert.False(t, Principal{}.OwnsComment(&Comment{AuthorIP: ""}))
}
