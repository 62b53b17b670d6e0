package main

import (
	"fmt"
	"os"

	"mirroir/internal/ipc"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func strPtr(v string) *string     { return &v }

func sendAndReport(cmd *ipc.Command) {
	client := dialClient()
	defer client.Close()

	resp, err := client.Do(cmd)
	reportResponse(resp, err)
}

func cmdTap(x, y float64) {
	sendAndReport(&ipc.Command{Action: "click", X: floatPtr(x), Y: floatPtr(y), CursorMode: strPtr(*cursorMode)})
}

func cmdLongPress(x, y float64, durationMs int) {
	sendAndReport(&ipc.Command{Action: "long_press", X: floatPtr(x), Y: floatPtr(y), DurationMs: intPtr(durationMs), CursorMode: strPtr(*cursorMode)})
}

func cmdDoubleTap(x, y float64) {
	sendAndReport(&ipc.Command{Action: "double_tap", X: floatPtr(x), Y: floatPtr(y), CursorMode: strPtr(*cursorMode)})
}

func cmdDrag(fromX, fromY, toX, toY float64, durationMs int) {
	sendAndReport(&ipc.Command{
		Action: "drag",
		FromX:  floatPtr(fromX), FromY: floatPtr(fromY),
		ToX: floatPtr(toX), ToY: floatPtr(toY),
		DurationMs: intPtr(durationMs), CursorMode: strPtr(*cursorMode),
	})
}

func cmdSwipe(fromX, fromY, toX, toY float64, durationMs int) {
	sendAndReport(&ipc.Command{
		Action: "swipe",
		FromX:  floatPtr(fromX), FromY: floatPtr(fromY),
		ToX: floatPtr(toX), ToY: floatPtr(toY),
		DurationMs: intPtr(durationMs),
	})
}

func cmdMove(dx, dy int) {
	sendAndReport(&ipc.Command{Action: "move", DX: intPtr(dx), DY: intPtr(dy)})
}

func cmdType(text string) {
	sendAndReport(&ipc.Command{Action: "type", Text: strPtr(text)})
}

func cmdPressKey(name string, modifiers []string) {
	sendAndReport(&ipc.Command{Action: "press_key", Key: strPtr(name), Modifiers: modifiers})
}

func cmdShake() {
	sendAndReport(&ipc.Command{Action: "shake"})
}

func cmdReloadPolicy() {
	sendAndReport(&ipc.Command{Action: "reload_policy"})
}

func cmdStatus() {
	client := dialClient()
	defer client.Close()

	resp, err := client.Do(&ipc.Command{Action: "status"})
	if err != nil {
		printError(err.Error())
		os.Exit(1)
	}
	if !resp.OK {
		printError(resp.Error)
		os.Exit(1)
	}

	printSection("DAEMON STATUS")
	fmt.Printf("  %sSocket%s          %s\n", c.Dim, c.Reset, *socketPath)
	if resp.KeyboardReady != nil {
		fmt.Printf("  %sKeyboard%s        %s\n", c.Dim, c.Reset, readyLabel(*resp.KeyboardReady))
	}
	if resp.PointingReady != nil {
		fmt.Printf("  %sPointing%s        %s\n", c.Dim, c.Reset, readyLabel(*resp.PointingReady))
	}
	fmt.Println()
}

func readyLabel(ready bool) string {
	if ready {
		return c.Bold + c.Green + "READY" + c.Reset
	}
	return c.Bold + c.Yellow + "NOT READY" + c.Reset
}

func cmdPing() {
	client := dialClient()
	defer client.Close()

	resp, err := client.Do(&ipc.Command{Action: "ping"})
	if err != nil {
		fmt.Printf("  %sDaemon%s  %s%sNOT RUNNING%s (%v)\n", c.Dim, c.Reset, c.Bold, c.Red, c.Reset, err)
		os.Exit(1)
	}
	if !resp.OK {
		fmt.Printf("  %sDaemon%s  %s%sNOT RESPONDING%s\n", c.Dim, c.Reset, c.Bold, c.Red, c.Reset)
		os.Exit(1)
	}
	fmt.Printf("  %sDaemon%s  %s%sRUNNING%s\n", c.Dim, c.Reset, c.Bold, c.Green, c.Reset)
}
