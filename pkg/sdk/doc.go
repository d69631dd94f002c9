// Package curalink is a Go client for the curalink archive gateway.
//
// # Searching
//
//	client, _ := curalink.New("http://localhost:8000", curalink.WithAPIKey(key))
//	res, _ := client.Patients(ctx, curalink.PatientQuery{FamilyName: "Smith", Fuzzy: true, Limit: 25})
//	for _, p := range res.Items {
//	    fmt.Println(p.Name, p.BirthDate)
//	}
//
// # Superseding searches
//
// A Session keeps one result slot per search kind. A search started after
// another one supersedes it: the older request is cancelled and its result,
// should it still arrive, is discarded with ErrSuperseded.
//
//	s := client.Session()
//	go s.Patients(ctx, curalink.PatientQuery{FamilyName: "Sm"})
//	res, err := s.Patients(ctx, curalink.PatientQuery{FamilyName: "Smith"})
package curalink
