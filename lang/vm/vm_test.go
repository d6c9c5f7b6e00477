package vm_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tansy-lang/tansy/lang/gc"
	"github.com/tansy-lang/tansy/lang/vm"
)

func run(t *testing.T, src string) string {
	t.Helper()
	var out bytes.Buffer
	machine := vm.New(gc.NewHeap()).WithOutput(&out)
	err := machine.Interpret("<test>", src)
	require.NoError(t, err)
	return out.String()
}

func lines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func TestArithmeticAndPrint(t *testing.T) {
	assert.Equal(t, []string{"7"}, lines(run(t, `print 1 + 2 * 3;`)))
}

func TestStringConcatenationWithNumbers(t *testing.T) {
	assert.Equal(t, []string{"count: 3"}, lines(run(t, `print "count: " + 3;`)))
}

func TestFibonacciRecursion(t *testing.T) {
	src := `
		fun fib(n) {
			if (n < 2) { return n; }
			return fib(n - 1) + fib(n - 2);
		}
		print fib(10);
	`
	assert.Equal(t, []string{"55"}, lines(run(t, src)))
}

func TestClosuresShareUpvalue(t *testing.T) {
	src := `
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
		print c();
	`
	assert.Equal(t, []string{"1", "2", "3"}, lines(run(t, src)))
}

func TestClassesAndMethods(t *testing.T) {
	src := `
		class Point {
			init(x, y) {
				this.x = x;
				this.y = y;
			}
			sum() {
				return this.x + this.y;
			}
		}
		let p = Point(3, 4);
		print p.sum();
	`
	assert.Equal(t, []string{"7"}, lines(run(t, src)))
}

func TestArraysPushPopAndIndex(t *testing.T) {
	src := `
		let arr = [1, 2, 3];
		arr.push(4);
		print arr[3];
		print arr.pop();
		print len(arr);
	`
	assert.Equal(t, []string{"4", "4", "3"}, lines(run(t, src)))
}

func TestTableLiteralAndSubscript(t *testing.T) {
	src := `
		let t = {"a": 1, "b": 2};
		print t["a"] + t["b"];
	`
	assert.Equal(t, []string{"3"}, lines(run(t, src)))
}

func TestSwitchFallthroughAndBreak(t *testing.T) {
	src := `
		fun classify(n) {
			switch (n) {
			case 1:
			case 2:
				print "small";
				break;
			case 3:
				print "three";
				break;
			default:
				print "other";
			}
		}
		classify(1);
		classify(2);
		classify(3);
		classify(9);
	`
	assert.Equal(t, []string{"small", "small", "three", "other"}, lines(run(t, src)))
}

func TestTernaryAndLoopControlFlow(t *testing.T) {
	src := `
		for (let i = 0; i < 5; i = i + 1) {
			if (i == 2) { continue; }
			if (i == 4) { break; }
			print i < 1 ? "zero" : "nonzero";
		}
	`
	assert.Equal(t, []string{"zero", "nonzero", "nonzero"}, lines(run(t, src)))
}

func TestDeleteField(t *testing.T) {
	src := `
		class Box {
			init(v) { this.v = v; }
		}
		let b = Box(1);
		del b.v;
		print b.v;
	`
	var out bytes.Buffer
	machine := vm.New(gc.NewHeap()).WithOutput(&out)
	err := machine.Interpret("<test>", src)
	require.Error(t, err)
	var rerr *vm.RuntimeError
	require.ErrorAs(t, err, &rerr)
}

func TestRuntimeErrorOnUndefinedGlobal(t *testing.T) {
	var out bytes.Buffer
	machine := vm.New(gc.NewHeap()).WithOutput(&out)
	err := machine.Interpret("<test>", `print nope;`)
	require.Error(t, err)
	var rerr *vm.RuntimeError
	require.ErrorAs(t, err, &rerr)
	assert.Contains(t, rerr.Error(), "undefined variable")
}
