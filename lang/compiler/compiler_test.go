package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tansy-lang/tansy/lang/compiler"
	"github.com/tansy-lang/tansy/lang/gc"
)

func compileOK(t *testing.T, src string) {
	t.Helper()
	heap := gc.NewHeap()
	_, err := compiler.Compile("<test>", src, heap)
	require.NoError(t, err)
}

func TestCompileValidPrograms(t *testing.T) {
	cases := []string{
		`print 1 + 2 * 3;`,
		`let x = 1; const y = 2; print x + y;`,
		`if (1 < 2) { print "yes"; } else { print "no"; }`,
		`while (true) { break; }`,
		`for (let i = 0; i < 3; i = i + 1) { if (i == 1) { continue; } print i; }`,
		`fun add(a, b) { return a + b; } print add(1, 2);`,
		`class Point { init(x, y) { this.x = x; this.y = y; } sum() { return this.x + this.y; } } let p = Point(1, 2); print p.sum();`,
		`let arr = [1, 2, 3]; print arr[0]; arr.push(4);`,
		`let t = {"a": 1, "b": 2}; print t["a"];`,
		`let n = 5; switch (n) { case 1: print "one"; case 5: print "five"; break; default: print "other"; }`,
		`print 1 < 2 ? "a" : "b";`,
		`print len([1, 2, 3]);`,
		`class Box { init(v) { this.v = v; } } let b = Box(1); del b.v;`,
	}
	for _, src := range cases {
		compileOK(t, src)
	}
}

func TestCompileReportsErrorsAndRecovers(t *testing.T) {
	heap := gc.NewHeap()
	_, err := compiler.Compile("<test>", `let x = ; print 1 + 1; let y;`, heap)
	require.Error(t, err)
	var list compiler.ErrorList
	require.ErrorAs(t, err, &list)
	assert.NotEmpty(t, list)
}

func TestCompileUndefinedConstRequiresInitializer(t *testing.T) {
	heap := gc.NewHeap()
	_, err := compiler.Compile("<test>", `const x;`, heap)
	require.Error(t, err)
}

func TestClosureCapturesEnclosingLocal(t *testing.T) {
	compileOK(t, `
		fun makeCounter() {
			let count = 0;
			fun inc() {
				count = count + 1;
				return count;
			}
			return inc;
		}
		let c = makeCounter();
		print c();
		print c();
	`)
}
