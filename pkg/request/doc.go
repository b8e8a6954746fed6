// Package request parses generation requests arriving over any transport and
// encodes replies for the line-oriented socket protocol.
package request
