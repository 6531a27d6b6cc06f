// Package state keeps per-conversation flow sessions for Telegram bots.
//
// A session is keyed by (chat, user) and holds one active flow with its
// JSON-encoded step data. Sessions expire after an idle TTL; backends are an
// in-memory map for single instances and a gorm table for shared deployments.
package state
