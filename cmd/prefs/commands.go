package prefs

import (
	"fmt"
	"sort"

	prefslib "github.com/ValentinKolb/sprefs/lib/prefs"
	"github.com/ValentinKolb/sprefs/lib/serializer"
	"github.com/spf13/cobra"
)

var (
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Long: `Reads the value for a key. Without --type the stored type is printed.
With --type the typed getter is used and a different stored type is an error.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			typ, _ := cmd.Flags().GetString("type")
			if typ == "" {
				return printStored(key)
			}
			value, err := getTyped(typ, key)
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, type=%s, value=%v\n", key, typ, value)
			return nil
		},
	}
	putCmd = &cobra.Command{
		Use:   "put [type] [key] [value]",
		Short: "Sets the value for a key (type: int, long, float, double, boolean, string)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, key, raw := args[0], args[1], args[2]
			if err := putTyped(typ, key, raw); err != nil {
				return err
			}
			if err := prefslib.Flush(); err != nil {
				return err
			}
			fmt.Println("put successfully")
			return nil
		},
	}
	removeCmd = &cobra.Command{
		Use:   "remove [key]",
		Short: "Deletes a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := prefslib.Remove(args[0]); err != nil {
				return err
			}
			if err := prefslib.Flush(); err != nil {
				return err
			}
			fmt.Println("removed successfully")
			return nil
		},
	}
	containsCmd = &cobra.Command{
		Use:   "contains [key]",
		Short: "Checks if a key exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			found, err := prefslib.Contains(key)
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, found=%t\n", key, found)
			return nil
		},
	}
	listCmd = &cobra.Command{
		Use:   "list",
		Short: "Lists all entries of the namespace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ns, err := prefslib.Handle()
			if err != nil {
				return err
			}
			entries := ns.GetAll()
			keys := make([]string, 0, len(entries))
			for key := range entries {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			for _, key := range keys {
				v := entries[key]
				fmt.Printf("%-30s %-8s %s\n", key, v.Kind(), v)
			}
			fmt.Printf("(%d entries)\n", len(keys))
			return nil
		},
	}
	clearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Removes all entries of the namespace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := prefslib.Clear(); err != nil {
				return err
			}
			if err := prefslib.Flush(); err != nil {
				return err
			}
			fmt.Println("cleared successfully")
			return nil
		},
	}
)

func init() {
	getCmd.Flags().String("type", "", "Expected type (int, long, float, double, boolean, string)")
}

// printStored prints a value with the type it was stored as
func printStored(key string) error {
	ns, err := prefslib.Handle()
	if err != nil {
		return err
	}
	v, ok, err := ns.Get(key)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Printf("key=%s, found=false\n", key)
		return nil
	}
	fmt.Printf("key=%s, found=true, type=%s, value=%s\n", key, v.Kind(), v)
	return nil
}

// getTyped reads key with the getter of typ
func getTyped(typ, key string) (any, error) {
	switch typ {
	case "int":
		return prefslib.GetInt(key)
	case "long":
		return prefslib.GetLong(key)
	case "float":
		return prefslib.GetFloat(key)
	case "double":
		return prefslib.GetDouble(key)
	case "boolean", "bool":
		return prefslib.GetBoolean(key)
	case "string":
		return prefslib.GetString(key)
	default:
		return nil, fmt.Errorf("invalid type %s (expected int, long, float, double, boolean or string)", typ)
	}
}

// putTyped parses raw as typ and stores it with the putter of typ
func putTyped(typ, key, raw string) error {
	if typ == "double" {
		v, err := serializer.ParseDouble(raw)
		if err != nil {
			return fmt.Errorf("value must be a double: %w", err)
		}
		d, _ := v.AsDouble()
		return prefslib.PutDouble(key, d)
	}

	kind, err := serializer.ParseKind(typ)
	if err != nil {
		return err
	}
	v, err := serializer.Parse(kind, raw)
	if err != nil {
		return fmt.Errorf("value must be a %s: %w", kind, err)
	}

	switch kind {
	case serializer.KindInt:
		i, _ := v.AsInt()
		return prefslib.PutInt(key, i)
	case serializer.KindLong:
		l, _ := v.AsLong()
		return prefslib.PutLong(key, l)
	case serializer.KindFloat:
		f, _ := v.AsFloat()
		return prefslib.PutFloat(key, f)
	case serializer.KindBool:
		b, _ := v.AsBool()
		return prefslib.PutBoolean(key, b)
	default:
		s, _ := v.AsString()
		return prefslib.PutString(key, s)
	}
}
