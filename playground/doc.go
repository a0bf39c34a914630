// Package playground is a client for a remote playground service: named
// Erlang and Elixir sandboxes that can be created, updated with source and
// dependencies, run, and removed.
//
// A [Manager] holds one duplex connection. Any number of operations may be
// in flight on it at once; each call blocks only its own goroutine until the
// service has sent the terminal response for that call.
//
//	m, err := playground.New(playground.Config{URL: "ws://localhost:8080/"})
//	if err != nil {
//		return err
//	}
//	if err := m.Connect(ctx); err != nil {
//		return err
//	}
//	defer m.Close()
//
//	err = m.Run(ctx, "demo", func(resp protocol.Response) {
//		if resp.Type == protocol.TypeData {
//			fmt.Println(resp.Data)
//		}
//	})
//
// # Completion
//
// Create, Update, Run and Remove return after the handler has seen the
// terminal response. The returned error is nil for "ok", a
// [correlate.RemoteError] for "error", and wraps [correlate.ErrConnectionClosed]
// if the connection went away first. Calls made before [Manager.Connect]
// fail with [ErrNotReady] without sending anything.
//
// Cancelling ctx stops the wait but not the remote operation. Use
// [Manager.Submit] to issue an operation without waiting.
package playground
