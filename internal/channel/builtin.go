package channel

import (
	"context"

	zerrors "github.com/zephyr-lang/zephyr/internal/errors"
	"github.com/zephyr-lang/zephyr/internal/fiber"
	"github.com/zephyr-lang/zephyr/internal/importer"
	"github.com/zephyr-lang/zephyr/internal/interp"
	"github.com/zephyr-lang/zephyr/internal/object"
	"github.com/zephyr-lang/zephyr/internal/value"
)

// init registers "sync" as a built-in module (spec §4.13's "built-in"
// loader kind), mirroring TestImportReturnsBuiltinModuleAndCachesIt's
// registration shape: a process-wide Init table a program reaches with
// `import sync`, giving Channel and Semaphore a path into running
// Zephyr code now that OpIMPFRM/OpIMPMOD resolve through
// interp.ImportModule.
func init() {
	ChannelType.Methods = map[string]object.Object{
		"send": interp.NewNativeFunction("Chan.send", 1, 1, 0, nil, nativeSend),
		"recv": interp.NewNativeFunction("Chan.recv", 0, 0, 0, nil, nativeRecv),
		"close": interp.NewNativeFunction("Chan.close", 0, 0, 0, nil, func(f *fiber.Fiber, self object.Object, args []object.Object, kwargs object.AttributeMap) (object.Object, error) {
			self.(*Channel).Close()
			return nil, nil
		}),
		"flush": interp.NewNativeFunction("Chan.flush", 0, 0, 0, nil, func(f *fiber.Fiber, self object.Object, args []object.Object, kwargs object.AttributeMap) (object.Object, error) {
			self.(*Channel).Flush()
			return nil, nil
		}),
	}
	SemaphoreType.Methods = map[string]object.Object{
		"acquire":    interp.NewNativeFunction("Semaphore.acquire", 1, 1, 0, nil, nativeAcquire),
		"tryAcquire": interp.NewNativeFunction("Semaphore.tryAcquire", 1, 1, 0, nil, nativeTryAcquire),
		"release":    interp.NewNativeFunction("Semaphore.release", 1, 1, 0, nil, nativeRelease),
	}

	importer.Register(&importer.Init{
		Name: "sync",
		Functions: map[string]object.Object{
			"chan":      interp.NewNativeFunction("sync.chan", 2, 0, 0, nil, nativeNewChan),
			"semaphore": interp.NewNativeFunction("sync.semaphore", 1, 1, 0, nil, nativeNewSemaphore),
		},
		Types: []*object.TypeInfo{ChannelType, SemaphoreType},
	})
}

func intArg(args []object.Object, i int, fn string) (int, *zerrors.RuntimeError) {
	if i >= len(args) {
		return 0, zerrors.TypeMismatch("Int", "missing argument")
	}
	n, ok := args[i].(*value.Int)
	if !ok {
		return 0, zerrors.TypeMismatch("Int", args[i].Header().Type().Name)
	}
	return int(n.Value), nil
}

func nativeNewChan(f *fiber.Fiber, self object.Object, args []object.Object, kwargs object.AttributeMap) (object.Object, error) {
	capacity := 1
	if len(args) > 0 {
		n, err := intArg(args, 0, "sync.chan")
		if err != nil {
			return nil, err
		}
		capacity = n
	}
	var defval object.Object
	if len(args) > 1 {
		defval = args[1]
	}
	return New(capacity, defval), nil
}

func nativeNewSemaphore(f *fiber.Fiber, self object.Object, args []object.Object, kwargs object.AttributeMap) (object.Object, error) {
	n, err := intArg(args, 0, "sync.semaphore")
	if err != nil {
		return nil, err
	}
	return NewSemaphore(n), nil
}

func nativeSend(f *fiber.Fiber, self object.Object, args []object.Object, kwargs object.AttributeMap) (object.Object, error) {
	c, ok := self.(*Channel)
	if !ok {
		return nil, zerrors.TypeMismatch("Chan", self.Header().Type().Name)
	}
	if err := c.Send(args[0]); err != nil {
		return nil, err
	}
	return nil, nil
}

func nativeRecv(f *fiber.Fiber, self object.Object, args []object.Object, kwargs object.AttributeMap) (object.Object, error) {
	c, ok := self.(*Channel)
	if !ok {
		return nil, zerrors.TypeMismatch("Chan", self.Header().Type().Name)
	}
	v, err := c.Recv()
	if err != nil {
		return nil, err
	}
	return v, nil
}

func nativeAcquire(f *fiber.Fiber, self object.Object, args []object.Object, kwargs object.AttributeMap) (object.Object, error) {
	s, ok := self.(*Semaphore)
	if !ok {
		return nil, zerrors.TypeMismatch("Semaphore", self.Header().Type().Name)
	}
	w, err := intArg(args, 0, "Semaphore.acquire")
	if err != nil {
		return nil, err
	}
	if rtErr := s.Acquire(context.Background(), w); rtErr != nil {
		return nil, rtErr
	}
	return nil, nil
}

func nativeTryAcquire(f *fiber.Fiber, self object.Object, args []object.Object, kwargs object.AttributeMap) (object.Object, error) {
	s, ok := self.(*Semaphore)
	if !ok {
		return nil, zerrors.TypeMismatch("Semaphore", self.Header().Type().Name)
	}
	w, err := intArg(args, 0, "Semaphore.tryAcquire")
	if err != nil {
		return nil, err
	}
	// No dedicated boolean value type exists yet; 1/0 is the same
	// encoding object.Truthy already treats as true/false for Int.
	if s.TryAcquire(w) {
		return value.NewInt(1), nil
	}
	return value.NewInt(0), nil
}

func nativeRelease(f *fiber.Fiber, self object.Object, args []object.Object, kwargs object.AttributeMap) (object.Object, error) {
	s, ok := self.(*Semaphore)
	if !ok {
		return nil, zerrors.TypeMismatch("Semaphore", self.Header().Type().Name)
	}
	w, err := intArg(args, 0, "Semaphore.release")
	if err != nil {
		return nil, err
	}
	s.Release(w)
	return nil, nil
}
