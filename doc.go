/*
Package connpool provides a typed registry of database connection handles.

A Registry hands out uniquely keyed handles, tracks them while they are
checked out and closes them when they are removed. Backends plug in by
implementing Native; the drivers/ packages provide Bun, pgx and sqlx
backends.

The registry is not a bounded pool: there is no size limit, no waiting, no
idle reuse and no health checking. Every CheckOutNew opens a new connection.

# Basic Usage

	factory := connpool.NewUUIDFactory(sqlxdb.Constructor(sqlxdb.DriverPostgres))

	cfg := connpool.DefaultConfig(os.Getenv("DATABASE_URL"))
	cfg.Logger = slog.Default()

	reg, err := connpool.New[string, *sqlxdb.Conn](factory, cfg)
	if err != nil {
	    log.Fatal(err)
	}
	defer reg.Close()

# Checkout

	conn, err := reg.CheckOutNew(ctx)
	if err != nil {
	    return err
	}

	// Later, possibly from another goroutine
	same, err := reg.CheckOut(ctx, conn.Key())

	// Validate that the handle is still registered
	err = reg.CheckIn(ctx, conn)

	// Close the native connection and forget the key
	err = reg.CloseAndRemoveConn(ctx, conn)

# Changing Targets

SetConnectionString applies to future connections and closes every
registered one:

	err := reg.SetConnectionString(ctx, "postgres://other-host/app")
	// reg.Count() == 0

# Error Handling

	if _, err := reg.CheckOut(ctx, key); err != nil {
	    if connpool.IsNotFound(err) {
	        // Handle unknown key
	    }

	    var poolErr *connpool.Error
	    if errors.As(err, &poolErr) {
	        fmt.Println(poolErr.Code) // CONNECTION_NOT_FOUND
	        fmt.Println(poolErr.Key)
	    }
	}
*/
package connpool
