// Package mediatype implements MIME media types as used in Accept and
// Content-Type headers.
//
// Tokens follow the grammar of RFC 2616 section 2.2, which RFC 7231 keeps for
// media types: type, subtype and parameter attributes must be tokens, parameter
// values are tokens or quoted strings. Type and subtype are case-insensitive
// and stored lowercased, parameter attributes are matched case-insensitively
// but keep the case they were given in.
package mediatype
