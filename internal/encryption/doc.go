// Package encryption provides chunked, parallel AES-256 encryption in ECB and CTR modes.
// A buffer is partitioned into disjoint, block-aligned ranges, each range is transformed
// by its own worker, and the output is bit-identical to a single serial pass.
// A serial reference path (ECB, CBC, CTR) shares the same wire format.
package encryption
