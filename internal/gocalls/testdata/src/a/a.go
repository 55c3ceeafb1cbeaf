package a

import (
	"fmt"
	"os"
	"time"
)

type server struct{}

func (s *server) stop() {
	os.Exit(1) // want `Call to 'Exit' is forbidden`
}

func run() {
	fmt.Println("starting")
	time.Sleep(time.Second) // want `Call to 'Sleep' with 1 arguments is forbidden`
	exit()                  // want `Call to 'exit' is forbidden`
	exitNow()
	_ = string([]byte("x"))
	_ = Map[int](nil)
	(exit)() // want `Call to 'exit' is forbidden`
	func() {}()
}

func exit()    {}
func exitNow() {}

func Map[T any](xs []T) []T { return xs }

func Sleep(a, b int) {}

func useSleep() {
	Sleep(1, 2)
}

func dispatch(handlers []func(int), m map[string]func(), i int) {
	handlers[0](1)
	handlers[i](1)
	m["k"]()
	Exit[int](3) // want `Call to 'Exit' is forbidden`
}

func Exit[T any](code T) {}
