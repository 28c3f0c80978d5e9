// Package recsearch embeds the recommendation search engine in a Go program,
// backed by Redis with the query engine or by an in-process memory store.
//
// Every query is scoped to one tenant (submission base number):
//
//	client, _ := recsearch.New(ctx, recsearch.WithRedis("localhost:6379", ""))
//	defer client.Close()
//
//	_, _ = client.Records().Save(ctx, recsearch.Record{
//	    ID: "rec-1", Title: "Fire door blocked", Status: "OPEN", SubmissionBaseNr: "SUB123456",
//	})
//
//	page, _ := client.Search("SUB123456").
//	    Contains(recsearch.FieldTitle, "fire").
//	    In(recsearch.FieldStatus, "OPEN", "IN PROGRESS").
//	    SortDesc(recsearch.FieldDueDate).
//	    Window(0, 50).
//	    Do(ctx)
//
// page.LastRow reports the number of rows reached; page.End is true on the
// final page.
package recsearch
