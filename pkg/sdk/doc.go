// Package sdk provides a typed Go client for the planllama MCP server.
//
// The client wraps mcp-go/client.CallTool with one method per MCP tool,
// decoding results into the same types the services return, and retries
// transport failures via fortify.
//
// Usage:
//
//	transport, _ := client.NewStdioTransport("planllama", "mcp")
//	c := sdk.NewClient(transport)
//	defer c.Close()
//
//	_, _ = c.Initialize(ctx)
//	res, _ := c.AutoAssign(ctx, 1, nil)
//	fmt.Println(res.Summary.AssignedCount)
package sdk
