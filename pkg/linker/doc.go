// Package linker finds shared-library references of a binary that no longer
// resolve on disk.
//
// The dynamic-linker inspection tool (ldd by default) prints one line per
// linked object. Three shapes are understood:
//
//	linux-vdso.so.1 (0x00007ffd...)                       virtual object
//	libfoo.so.1 => /usr/lib/libfoo.so.1 (0x00007f...)     resolved reference
//	libbar.so.2 => not found                              unresolved reference
//
// Any other line is a format anomaly: it is logged, reported through the
// observability hooks and treated as resolved, so unexpected tool output can
// never abort a run.
//
// # Resolution heuristics
//
// Whether a virtual or resolved-looking entry counts as present is decided by
// a [Policy]. [DefaultPolicy] treats kernel-provided objects (linux-vdso,
// linux-gate) and relative paths (objects a program locates itself at start
// up) as resolved. These are best-effort guesses about linker internals, not
// proofs; extra prefixes can be configured.
//
// Existence checks probe the filesystem at call time. The result can be stale
// by the time it is acted upon; relink accepts that window.
package linker
