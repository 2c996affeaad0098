package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

func smells(m dsl.Matcher) {
	// Two consecutive guards with the same return are mergeable with ||.
	m.Match(`if $c1 { return $ret }; if $c2 { return $ret }`).
		Report(`two consecutive guards return the same value; consider merging conditions with ||`).
		Suggest(`if $c1 || $c2 { return $ret }`)

	m.Match(`time.Now().Sub($t)`).
		Report(`time.Now().Sub(t) reads better as time.Since(t)`).
		Suggest(`time.Since($t)`)

	m.Match(`strings.Replace($s, $old, $new, -1)`).
		Report(`strings.Replace with n=-1 is strings.ReplaceAll`).
		Suggest(`strings.ReplaceAll($s, $old, $new)`)
}
